// Package form validates feedback submitted through the HTTP API and the bot
// before it reaches the repository, which accepts anything it is given.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"product_feedback/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Feedback mirrors model.Draft with the submission rules attached.
type Feedback struct {
	Brand         string  `json:"brand" validate:"required"`
	ProductType   string  `json:"productType" validate:"required"`
	Model         string  `json:"model" validate:"required"`
	PriceRating   float64 `json:"priceRating" validate:"required,min=1,max=5"`
	DesignRating  float64 `json:"designRating" validate:"required,min=1,max=5"`
	QualityRating float64 `json:"qualityRating" validate:"required,min=1,max=5"`
	OverallRating float64 `json:"overallRating" validate:"required,min=1,max=5"`
	Comments      string  `json:"comments"`
}

// Error lists the rejected fields with a human readable message each.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

var messages = map[string]string{
	"Brand":         "Brand name is required",
	"ProductType":   "Product type is required",
	"Model":         "Model name is required",
	"PriceRating":   "Please rate the price",
	"DesignRating":  "Please rate the design",
	"QualityRating": "Please rate the quality",
	"OverallRating": "Please provide an overall rating",
}

var jsonNames = map[string]string{
	"Brand":         "brand",
	"ProductType":   "productType",
	"Model":         "model",
	"PriceRating":   "priceRating",
	"DesignRating":  "designRating",
	"QualityRating": "qualityRating",
	"OverallRating": "overallRating",
}

// Draft trims the text fields, validates the submission and converts it
// into a repository draft.
func (f Feedback) Draft() (model.Draft, error) {
	f.Brand = strings.TrimSpace(f.Brand)
	f.ProductType = strings.TrimSpace(f.ProductType)
	f.Model = strings.TrimSpace(f.Model)
	f.Comments = strings.TrimSpace(f.Comments)

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.Draft{}, fmt.Errorf("validate feedback: %w", err)
		}
		out := &Error{Fields: make(map[string]string, len(verrs))}
		for _, fe := range verrs {
			msg := messages[fe.Field()]
			if fe.Tag() == "min" || fe.Tag() == "max" {
				msg = fmt.Sprintf("%s must be between 1 and 5", jsonNames[fe.Field()])
			}
			out.Fields[jsonNames[fe.Field()]] = msg
		}
		return model.Draft{}, out
	}

	return model.Draft{
		Brand:         f.Brand,
		ProductType:   f.ProductType,
		Model:         f.Model,
		PriceRating:   f.PriceRating,
		DesignRating:  f.DesignRating,
		QualityRating: f.QualityRating,
		OverallRating: f.OverallRating,
		Comments:      f.Comments,
	}, nil
}
