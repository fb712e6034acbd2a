// Package query implements the filter and sort pipeline over feedback records.
package query

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"product_feedback/internal/model"
	"product_feedback/internal/storage"
)

// All is the filter value that disables filtering on a dimension.
const All = "all"

// SortKey names the field records are ordered by.
type SortKey string

// Supported sort keys.
const (
	SortDate          SortKey = "date"
	SortBrand         SortKey = "brand"
	SortProductType   SortKey = "productType"
	SortOverallRating SortKey = "overallRating"
)

// Direction is the sort order.
type Direction string

// Supported directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filter restricts records by brand and product type.
// Either field set to All matches every record.
type Filter struct {
	Brand       string
	ProductType string
}

// NoFilter matches every record.
var NoFilter = Filter{Brand: All, ProductType: All}

// Sort selects the ordering of the result.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort is newest first.
var DefaultSort = Sort{Key: SortDate, Direction: Desc}

// Matches reports whether item passes both filter dimensions.
func (f Filter) Matches(item model.Feedback) bool {
	if f.Brand != All && item.Brand != f.Brand {
		return false
	}
	if f.ProductType != All && item.ProductType != f.ProductType {
		return false
	}
	return true
}

// Apply filters items and returns them in the requested order.
// The input slice is never modified. Records that compare equal keep
// their relative input order.
func Apply(items []model.Feedback, f Filter, s Sort) []model.Feedback {
	out := make([]model.Feedback, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}

	compare := comparator(s.Key)
	slices.SortStableFunc(out, func(a, b model.Feedback) int {
		c := compare(a, b)
		if s.Direction != Asc {
			return -c
		}
		return c
	})
	return out
}

// Run reads a snapshot from store and applies the pipeline to it.
func Run(ctx context.Context, store storage.Storage, f Filter, s Sort) ([]model.Feedback, error) {
	items, err := store.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return Apply(items, f, s), nil
}

func comparator(key SortKey) func(a, b model.Feedback) int {
	switch key {
	case SortBrand:
		c := collate.New(language.English)
		return func(a, b model.Feedback) int { return c.CompareString(a.Brand, b.Brand) }
	case SortProductType:
		c := collate.New(language.English)
		return func(a, b model.Feedback) int { return c.CompareString(a.ProductType, b.ProductType) }
	case SortOverallRating:
		return func(a, b model.Feedback) int { return cmp.Compare(a.OverallRating, b.OverallRating) }
	default:
		return func(a, b model.Feedback) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// ParseSortKey maps user input to a SortKey. Empty or unknown input
// falls back to SortDate.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortBrand, SortProductType, SortOverallRating:
		return k
	default:
		return SortDate
	}
}

// ParseDirection maps user input to a Direction; anything but "asc" is Desc.
func ParseDirection(s string) Direction {
	if Direction(s) == Asc {
		return Asc
	}
	return Desc
}

// ParseFilterValue maps empty input to All.
func ParseFilterValue(s string) string {
	if s == "" {
		return All
	}
	return s
}
