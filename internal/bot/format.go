package bot

import (
	"fmt"
	"strconv"
	"strings"

	"product_feedback/internal/dashboard"
	"product_feedback/internal/insights"
	"product_feedback/internal/model"
)

const maxListed = 10

// FormatFeedback formats a single record.
func FormatFeedback(f model.Feedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n", f.Brand, f.Model, f.ProductType)
	fmt.Fprintf(&b, "Overall %s | price %s, design %s, quality %s\n",
		rating(f.OverallRating), rating(f.PriceRating), rating(f.DesignRating), rating(f.QualityRating))
	if f.Comments != "" {
		fmt.Fprintf(&b, "\"%s\"\n", f.Comments)
	}
	fmt.Fprintf(&b, "%s", f.CreatedAt.Format("Jan 2, 2006"))
	return b.String()
}

// FormatFeedbackList formats up to maxListed records.
func FormatFeedbackList(title string, items []model.Feedback) string {
	if len(items) == 0 {
		return "No feedback found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", title, len(items))
	for i, f := range items {
		if i == maxListed {
			fmt.Fprintf(&b, "\n...and %d more", len(items)-maxListed)
			break
		}
		b.WriteString("\n")
		b.WriteString(FormatFeedback(f))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSummary formats the insights view.
func FormatSummary(s dashboard.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Insights over %d feedback record(s)\n", s.Total)

	b.WriteString("\nAverage rating by brand:\n")
	for _, br := range s.BrandRatings {
		fmt.Fprintf(&b, "  %s: %s (%d)\n", br.Brand, rating(br.Rating), br.Count)
	}

	fmt.Fprintf(&b, "\nCategory averages (%d matching):\n", len(s.Items))
	if !s.Categories.HasData() {
		b.WriteString("  no data\n")
	} else {
		fmt.Fprintf(&b, "  Price: %s\n", mean(s.Categories.Price))
		fmt.Fprintf(&b, "  Design: %s\n", mean(s.Categories.Design))
		fmt.Fprintf(&b, "  Quality: %s\n", mean(s.Categories.Quality))
		fmt.Fprintf(&b, "  Overall: %s\n", mean(s.Categories.Overall))
	}

	b.WriteString("\nProduct types:\n")
	for _, tc := range s.Distribution {
		fmt.Fprintf(&b, "  %s: %d\n", tc.ProductType, tc.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func rating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mean(m insights.Mean) string {
	if !m.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', 1, 64)
}

// FormatDigest formats the periodic digest for fresh feedback.
func FormatDigest(s dashboard.Summary, added int) string {
	return fmt.Sprintf("Feedback digest: %d new record(s)\n\n%s", added, FormatSummary(s))
}
