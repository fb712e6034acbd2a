// Package insights computes aggregate statistics over feedback records.
package insights

import (
	"encoding/json"
	"math"

	"product_feedback/internal/model"
)

// Mean is an average that may be undefined because there was nothing to average.
type Mean struct {
	Value float64
	Valid bool
}

// MarshalJSON encodes an undefined mean as null.
func (m Mean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null as an undefined mean.
func (m *Mean) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Mean{}
		return nil
	}
	if err := json.Unmarshal(data, &m.Value); err != nil {
		return err
	}
	m.Valid = true
	return nil
}

func meanOf(sum float64, n int) Mean {
	if n == 0 {
		return Mean{}
	}
	return Mean{Value: sum / float64(n), Valid: true}
}

// BrandRating is the average overall rating of one brand.
type BrandRating struct {
	Brand  string  `json:"brand"`
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// Categories holds the mean of each rating category.
type Categories struct {
	Price   Mean `json:"price"`
	Design  Mean `json:"design"`
	Quality Mean `json:"quality"`
	Overall Mean `json:"overall"`
}

// HasData reports whether the averages were computed over at least one record.
func (c Categories) HasData() bool {
	return c.Overall.Valid
}

// TypeCount is the number of records of one product type.
type TypeCount struct {
	ProductType string `json:"productType"`
	Count       int    `json:"count"`
}

// BrandAverages groups items by brand, in order of first appearance, and
// averages the overall rating of each group rounded to one decimal.
func BrandAverages(items []model.Feedback) []BrandRating {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	var order []string
	for _, it := range items {
		g, ok := groups[it.Brand]
		if !ok {
			g = &acc{}
			groups[it.Brand] = g
			order = append(order, it.Brand)
		}
		g.sum += it.OverallRating
		g.n++
	}

	out := make([]BrandRating, 0, len(order))
	for _, brand := range order {
		g := groups[brand]
		out = append(out, BrandRating{
			Brand:  brand,
			Rating: round1(g.sum / float64(g.n)),
			Count:  g.n,
		})
	}
	return out
}

// CategoryAverages averages each rating category independently.
// An empty input yields undefined means.
func CategoryAverages(items []model.Feedback) Categories {
	var price, design, quality, overall float64
	for _, it := range items {
		price += it.PriceRating
		design += it.DesignRating
		quality += it.QualityRating
		overall += it.OverallRating
	}
	n := len(items)
	return Categories{
		Price:   meanOf(price, n),
		Design:  meanOf(design, n),
		Quality: meanOf(quality, n),
		Overall: meanOf(overall, n),
	}
}

// ProductTypeDistribution counts items per product type in order of first
// appearance. The counts always sum to len(items).
func ProductTypeDistribution(items []model.Feedback) []TypeCount {
	idx := make(map[string]int)
	var out []TypeCount
	for _, it := range items {
		i, ok := idx[it.ProductType]
		if !ok {
			i = len(out)
			idx[it.ProductType] = i
			out = append(out, TypeCount{ProductType: it.ProductType})
		}
		out[i].Count++
	}
	if out == nil {
		out = []TypeCount{}
	}
	return out
}

// Brands returns the distinct brands in order of first appearance.
func Brands(items []model.Feedback) []string {
	return distinct(items, func(f model.Feedback) string { return f.Brand })
}

// ProductTypes returns the distinct product types in order of first appearance.
func ProductTypes(items []model.Feedback) []string {
	return distinct(items, func(f model.Feedback) string { return f.ProductType })
}

func distinct(items []model.Feedback, key func(model.Feedback) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, it := range items {
		k := key(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
