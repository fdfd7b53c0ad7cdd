// Package review builds review documents from a member's ratings and feedback.
package review

import (
	"context"

	"teamperf/internal/domain"
)

// Generator names recorded on documents and in metrics
const (
	GeneratedByTemplate = "template"
	GeneratedByGenAI    = "genai"
)

// Input is everything a generator may look at. Ratings and feedback are already
// restricted to Period.
type Input struct {
	Member   domain.Member
	Period   domain.Period
	Ratings  []domain.RatingDetail
	Feedback []domain.Feedback
}

// Generator turns gathered input into a review document. Callers enforce the
// minimum data threshold before calling it.
type Generator interface {
	Generate(ctx context.Context, in Input) (*domain.ReviewDocument, error)
}
