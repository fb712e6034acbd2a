package bot

import (
	"fmt"
	"strconv"
	"strings"

	"product_feedback/internal/form"
	"product_feedback/internal/query"
)

// ParseAddArgs parses arguments for /add.
// Format: <brand> | <type> | <model> | <price> <design> <quality> <overall> [| <comments>]
func ParseAddArgs(args string) (form.Feedback, error) {
	parts := strings.SplitN(args, "|", 5)
	if len(parts) < 4 {
		return form.Feedback{}, fmt.Errorf("usage: /add <brand> | <type> | <model> | <price> <design> <quality> <overall> | <comments>")
	}

	ratings := strings.Fields(parts[3])
	if len(ratings) != 4 {
		return form.Feedback{}, fmt.Errorf("expected 4 ratings (price design quality overall), got %d", len(ratings))
	}
	var vals [4]float64
	for i, r := range ratings {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return form.Feedback{}, fmt.Errorf("invalid rating %q", r)
		}
		vals[i] = v
	}

	f := form.Feedback{
		Brand:         parts[0],
		ProductType:   parts[1],
		Model:         parts[2],
		PriceRating:   vals[0],
		DesignRating:  vals[1],
		QualityRating: vals[2],
		OverallRating: vals[3],
	}
	if len(parts) == 5 {
		f.Comments = parts[4]
	}
	return f, nil
}

// QueryArgs holds the parsed arguments of /list and /insights.
type QueryArgs struct {
	Filter query.Filter
	Sort   query.Sort
}

// ParseQueryArgs parses key=value pairs: brand, type, sort, order.
// A value runs until the next key, so brand=Bang & Olufsen works.
func ParseQueryArgs(args string) (QueryArgs, error) {
	out := QueryArgs{Filter: query.NoFilter, Sort: query.DefaultSort}

	vals := map[string]string{}
	var key string
	for _, tok := range strings.Fields(args) {
		k, v, ok := strings.Cut(tok, "=")
		if ok && isQueryKey(k) {
			key = k
			vals[key] = v
			continue
		}
		if key == "" {
			return QueryArgs{}, fmt.Errorf("unexpected %q, use: brand=, type=, sort=, order=", tok)
		}
		vals[key] += " " + tok
	}

	if v, ok := vals["brand"]; ok {
		out.Filter.Brand = query.ParseFilterValue(v)
	}
	if v, ok := vals["type"]; ok {
		out.Filter.ProductType = query.ParseFilterValue(v)
	}
	if v, ok := vals["sort"]; ok {
		out.Sort.Key = query.ParseSortKey(v)
	}
	if v, ok := vals["order"]; ok {
		switch v {
		case string(query.Asc), string(query.Desc):
			out.Sort.Direction = query.Direction(v)
		default:
			return QueryArgs{}, fmt.Errorf("invalid order %q, use: asc, desc", v)
		}
	}
	return out, nil
}

func isQueryKey(k string) bool {
	switch k {
	case "brand", "type", "sort", "order":
		return true
	}
	return false
}
