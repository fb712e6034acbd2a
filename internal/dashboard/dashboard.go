// Package dashboard composes the repository, query pipeline and aggregator
// into the views served to the HTTP API and the chat bot.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"product_feedback/internal/insights"
	"product_feedback/internal/model"
	"product_feedback/internal/query"
	"product_feedback/internal/storage"
)

// Summary is everything the insights view renders for one filter and sort.
type Summary struct {
	Total        int                    `json:"total"`
	Items        []model.Feedback       `json:"items"`
	Brands       []string               `json:"brands"`
	ProductTypes []string               `json:"productTypes"`
	BrandRatings []insights.BrandRating `json:"brandRatings"`
	Categories   insights.Categories    `json:"categories"`
	Distribution []insights.TypeCount   `json:"distribution"`
}

// Service answers dashboard queries over a Storage.
type Service struct {
	store       storage.Storage
	cache       *cache.Cache
	log         *slog.Logger
	version     atomic.Int64
	unsubscribe func()
}

// New creates a Service. Cached summaries are dropped whenever the
// repository grows.
func New(store storage.Storage, log *slog.Logger) *Service {
	s := &Service{
		store: store,
		cache: cache.New(5*time.Minute, 10*time.Minute),
		log:   log,
	}
	s.unsubscribe = store.Subscribe(func(f model.Feedback) {
		s.version.Add(1)
		s.cache.Flush()
		s.log.Debug("summary cache flushed", "feedback_id", f.ID)
	})
	return s
}

// Close detaches the service from the repository.
func (s *Service) Close() {
	s.unsubscribe()
}

// Add stores a new feedback record.
func (s *Service) Add(ctx context.Context, d model.Draft) (model.Feedback, error) {
	item, err := s.store.AddFeedback(ctx, d)
	if err != nil {
		return model.Feedback{}, fmt.Errorf("add feedback: %w", err)
	}
	s.log.Info("feedback added", "feedback_id", item.ID, "brand", item.Brand, "product_type", item.ProductType)
	return item, nil
}

// All returns every record in insertion order.
func (s *Service) All(ctx context.Context) ([]model.Feedback, error) {
	items, err := s.store.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// ByBrand returns the records of one brand, matched ignoring case.
func (s *Service) ByBrand(ctx context.Context, brand string) ([]model.Feedback, error) {
	items, err := s.store.ListFeedbackByBrand(ctx, brand)
	if err != nil {
		return nil, fmt.Errorf("list feedback by brand: %w", err)
	}
	return items, nil
}

// Query returns the filtered and sorted view.
func (s *Service) Query(ctx context.Context, f query.Filter, o query.Sort) ([]model.Feedback, error) {
	return query.Run(ctx, s.store, f, o)
}

// Summary builds the full insights view. Brand ratings and the product type
// distribution cover the whole dataset; category averages cover the filtered
// records only.
func (s *Service) Summary(ctx context.Context, f query.Filter, o query.Sort) (Summary, error) {
	// The version is read before the snapshot so a summary computed while an
	// append is in flight is stored under a key nobody asks for again.
	key := cacheKey(s.version.Load(), f, o)
	if v, ok := s.cache.Get(key); ok {
		return v.(Summary).clone(), nil
	}

	all, err := s.store.ListFeedback(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list feedback: %w", err)
	}
	filtered := query.Apply(all, f, o)

	sum := Summary{
		Total:        len(all),
		Items:        filtered,
		Brands:       append([]string{query.All}, insights.Brands(all)...),
		ProductTypes: append([]string{query.All}, insights.ProductTypes(all)...),
		BrandRatings: insights.BrandAverages(all),
		Categories:   insights.CategoryAverages(filtered),
		Distribution: insights.ProductTypeDistribution(all),
	}
	s.cache.Set(key, sum, cache.DefaultExpiration)
	return sum.clone(), nil
}

// clone copies the slices so callers never share the cached backing arrays.
func (s Summary) clone() Summary {
	s.Items = slices.Clone(s.Items)
	s.Brands = slices.Clone(s.Brands)
	s.ProductTypes = slices.Clone(s.ProductTypes)
	s.BrandRatings = slices.Clone(s.BrandRatings)
	s.Distribution = slices.Clone(s.Distribution)
	return s
}

func cacheKey(version int64, f query.Filter, o query.Sort) string {
	return fmt.Sprintf("summary:%d:%q:%q:%s:%s", version, f.Brand, f.ProductType, o.Key, o.Direction)
}
