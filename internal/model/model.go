// Package model defines the domain types used across the application.
package model

import "time"

// Draft holds the caller-supplied fields of a feedback record.
type Draft struct {
	Brand         string  `json:"brand"`
	ProductType   string  `json:"productType"`
	Model         string  `json:"model"`
	PriceRating   float64 `json:"priceRating"`
	DesignRating  float64 `json:"designRating"`
	QualityRating float64 `json:"qualityRating"`
	OverallRating float64 `json:"overallRating"`
	Comments      string  `json:"comments"`
}

// Feedback is a single product-feedback record.
// ID and CreatedAt are assigned by the repository and never change afterwards.
type Feedback struct {
	ID            string    `json:"id"`
	Brand         string    `json:"brand"`
	ProductType   string    `json:"productType"`
	Model         string    `json:"model"`
	PriceRating   float64   `json:"priceRating"`
	DesignRating  float64   `json:"designRating"`
	QualityRating float64   `json:"qualityRating"`
	OverallRating float64   `json:"overallRating"`
	Comments      string    `json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewFeedback builds a record from a draft with the given identity.
func NewFeedback(id string, d Draft, createdAt time.Time) Feedback {
	return Feedback{
		ID:            id,
		Brand:         d.Brand,
		ProductType:   d.ProductType,
		Model:         d.Model,
		PriceRating:   d.PriceRating,
		DesignRating:  d.DesignRating,
		QualityRating: d.QualityRating,
		OverallRating: d.OverallRating,
		Comments:      d.Comments,
		CreatedAt:     createdAt,
	}
}

// Draft returns the caller-supplied part of the record.
func (f Feedback) Draft() Draft {
	return Draft{
		Brand:         f.Brand,
		ProductType:   f.ProductType,
		Model:         f.Model,
		PriceRating:   f.PriceRating,
		DesignRating:  f.DesignRating,
		QualityRating: f.QualityRating,
		OverallRating: f.OverallRating,
		Comments:      f.Comments,
	}
}
