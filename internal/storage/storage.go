// Package storage defines the feedback repository interface and its implementations.
package storage

import (
	"context"
	"sync"
	"time"

	"product_feedback/internal/model"
)

// Storage is the append-only feedback repository.
type Storage interface {
	AddFeedback(ctx context.Context, d model.Draft) (model.Feedback, error)
	ListFeedback(ctx context.Context) ([]model.Feedback, error)
	ListFeedbackByBrand(ctx context.Context, brand string) ([]model.Feedback, error)

	// Subscribe registers fn to be called after every committed append.
	// The returned function removes the registration.
	Subscribe(fn func(model.Feedback)) (unsubscribe func())

	Close() error
}

// observers is the subscription registry shared by the implementations.
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(model.Feedback)
}

func (o *observers) subscribe(fn func(model.Feedback)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(model.Feedback))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers) notify(item model.Feedback) {
	o.mu.Lock()
	fns := make([]func(model.Feedback), 0, len(o.fns))
	// registration order
	for id := 0; id < o.next; id++ {
		if fn, ok := o.fns[id]; ok {
			fns = append(fns, fn)
		}
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(item)
	}
}

// SampleFeedback returns the records the dashboard is seeded with.
func SampleFeedback() []model.Feedback {
	return []model.Feedback{
		{
			ID:            "1",
			Brand:         "Samsung",
			ProductType:   "TV",
			Model:         `Samsung QLED 65"`,
			PriceRating:   4,
			DesignRating:  5,
			QualityRating: 4,
			OverallRating: 4.5,
			Comments:      "Great display but slightly overpriced.",
			CreatedAt:     time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "2",
			Brand:         "Apple",
			ProductType:   "Phone",
			Model:         "iPhone 14 Pro",
			PriceRating:   3,
			DesignRating:  5,
			QualityRating: 5,
			OverallRating: 4.5,
			Comments:      "Amazing quality and design, but very expensive.",
			CreatedAt:     time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "3",
			Brand:         "Sony",
			ProductType:   "Headphones",
			Model:         "WH-1000XM4",
			PriceRating:   4,
			DesignRating:  4,
			QualityRating: 5,
			OverallRating: 4.5,
			Comments:      "Best noise cancellation I've experienced. Great battery life too.",
			CreatedAt:     time.Date(2023, 9, 28, 0, 0, 0, 0, time.UTC),
		},
	}
}
