package review

import (
	"context"
	"fmt"
	"strings"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
)

// Thresholds for listing a category as a strength or a development area
const (
	StrengthThreshold    = 4.0
	DevelopmentThreshold = 3.0
	maxHighlights        = 3
)

var bandPhrases = map[string]string{
	performance.BandStar:   "exceptional and consistently exceeds expectations",
	performance.BandStrong: "strong and regularly exceeds expectations",
	performance.BandSolid:  "solid and meets expectations",
	performance.BandLower:  "below expectations in places and would benefit from support",
	performance.BandPoor:   "well below expectations and needs a focused improvement plan",
}

// TemplateGenerator writes a deterministic document from the rating bands
type TemplateGenerator struct{}

// NewTemplateGenerator creates a template generator
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) Generate(_ context.Context, in Input) (*domain.ReviewDocument, error) {
	overall := performance.Aggregate(performance.Values(in.Ratings))
	categories := performance.ByCategory(in.Ratings)

	doc := &domain.ReviewDocument{
		OverallScore:        overall.Average,
		OverallBand:         performance.Label(overall),
		CategoryAssessments: make([]domain.CategoryAssessment, 0, len(categories)),
		Strengths:           []string{},
		DevelopmentAreas:    []string{},
		RatingsConsidered:   overall.Count,
		FeedbackConsidered:  len(in.Feedback),
		GeneratedBy:         GeneratedByTemplate,
	}

	for _, c := range categories {
		doc.CategoryAssessments = append(doc.CategoryAssessments, domain.CategoryAssessment{
			CategoryID:    c.CategoryID,
			CategoryName:  c.CategoryName,
			AverageRating: c.AverageRating,
			RatingsCount:  c.RatingsCount,
			Band:          c.Band,
			Assessment:    fmt.Sprintf("%s is %s (%.2f over %d ratings).", c.CategoryName, phrase(c.Band), c.AverageRating, c.RatingsCount),
		})
	}

	// categories are sorted best first
	for _, c := range categories {
		if len(doc.Strengths) == maxHighlights || c.AverageRating < StrengthThreshold {
			break
		}
		doc.Strengths = append(doc.Strengths, c.CategoryName)
	}
	for i := len(categories) - 1; i >= 0; i-- {
		c := categories[i]
		if len(doc.DevelopmentAreas) == maxHighlights || c.AverageRating >= DevelopmentThreshold {
			break
		}
		doc.DevelopmentAreas = append(doc.DevelopmentAreas, c.CategoryName)
	}

	doc.Summary = summarize(in, doc)
	return doc, nil
}

func phrase(band string) string {
	if p, ok := bandPhrases[band]; ok {
		return p
	}
	return "not yet scored"
}

func summarize(in Input, doc *domain.ReviewDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Between %s and %s, %s averaged %.2f across %d ratings in %d categories, which is %s.",
		in.Period.Start.Format("2006-01-02"), in.Period.End.Format("2006-01-02"),
		in.Member.Name, doc.OverallScore, doc.RatingsConsidered, len(doc.CategoryAssessments), phrase(doc.OverallBand))
	if len(doc.Strengths) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.Join(doc.Strengths, ", "))
	}
	if len(doc.DevelopmentAreas) > 0 {
		fmt.Fprintf(&b, " Areas to develop: %s.", strings.Join(doc.DevelopmentAreas, ", "))
	}
	if doc.FeedbackConsidered > 0 {
		fmt.Fprintf(&b, " %d feedback note(s) were considered.", doc.FeedbackConsidered)
	}
	return b.String()
}
