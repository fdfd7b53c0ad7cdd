package review

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
)

func rated(categoryID, name string, values ...int) []domain.RatingDetail {
	out := make([]domain.RatingDetail, 0, len(values))
	for _, v := range values {
		out = append(out, domain.RatingDetail{
			Rating:       domain.Rating{Value: v},
			CategoryID:   categoryID,
			CategoryName: name,
		})
	}
	return out
}

func sampleInput() Input {
	var ratings []domain.RatingDetail
	ratings = append(ratings, rated("c1", "Delivery", 5, 5, 4)...)
	ratings = append(ratings, rated("c2", "Communication", 2, 3, 2)...)
	ratings = append(ratings, rated("c3", "Mentoring", 4, 4)...)
	return Input{
		Member: domain.Member{ID: "m1", Name: "Ana"},
		Period: domain.Period{
			Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		Ratings:  ratings,
		Feedback: []domain.Feedback{{Body: "Great sprint demo"}},
	}
}

func TestTemplateGenerator(t *testing.T) {
	doc, err := NewTemplateGenerator().Generate(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, 3.63, doc.OverallScore)
	assert.Equal(t, performance.BandSolid, doc.OverallBand)
	assert.Equal(t, 8, doc.RatingsConsidered)
	assert.Equal(t, 1, doc.FeedbackConsidered)
	assert.Equal(t, GeneratedByTemplate, doc.GeneratedBy)

	require.Len(t, doc.CategoryAssessments, 3)
	assert.Equal(t, "Delivery", doc.CategoryAssessments[0].CategoryName)
	assert.Equal(t, performance.BandStar, doc.CategoryAssessments[0].Band)

	assert.Equal(t, []string{"Delivery", "Mentoring"}, doc.Strengths)
	assert.Equal(t, []string{"Communication"}, doc.DevelopmentAreas)
	assert.Contains(t, doc.Summary, "Ana averaged 3.63 across 8 ratings in 3 categories")
	assert.Contains(t, doc.Summary, "2025-01-01")
}

func TestTemplateGenerator_Deterministic(t *testing.T) {
	g := NewTemplateGenerator()
	a, err := g.Generate(context.Background(), sampleInput())
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTemplateGenerator_HighlightsAreCapped(t *testing.T) {
	var ratings []domain.RatingDetail
	for i, name := range []string{"A", "B", "C", "D", "E"} {
		ratings = append(ratings, rated(string(rune('a'+i)), name, 5)...)
	}
	doc, err := NewTemplateGenerator().Generate(context.Background(), Input{Member: domain.Member{Name: "X"}, Ratings: ratings})
	require.NoError(t, err)
	assert.Len(t, doc.Strengths, maxHighlights)
	assert.Empty(t, doc.DevelopmentAreas)
}

type stubModel struct {
	text   string
	err    error
	prompt string
}

func (m *stubModel) GenerateText(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

func TestGenAIGenerator_UsesModelSummary(t *testing.T) {
	model := &stubModel{text: "  Ana had a strong quarter.  "}
	doc, err := NewGenAIGenerator(model, nil).Generate(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "Ana had a strong quarter.", doc.Summary)
	assert.Equal(t, GeneratedByGenAI, doc.GeneratedBy)
	assert.Equal(t, 3.63, doc.OverallScore)
	assert.True(t, strings.Contains(model.prompt, "Person: Ana"))
	assert.True(t, strings.Contains(model.prompt, "Great sprint demo"))
}

func TestGenAIGenerator_FallsBackToTemplate(t *testing.T) {
	for name, model := range map[string]*stubModel{
		"error": {err: errors.New("quota exceeded")},
		"empty": {text: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := NewGenAIGenerator(model, nil).Generate(context.Background(), sampleInput())
			require.NoError(t, err)
			assert.Equal(t, GeneratedByTemplate, doc.GeneratedBy)
			assert.Contains(t, doc.Summary, "Ana averaged")
		})
	}
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", nil)
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "fine", 10, "fine"},
		{"exact", "abc", 3, "abc"},
		{"ascii", "abcdef", 3, "abc..."},
		{"multibyte is never split", "ééééé", 2, "éé..."},
		{"thai", "สวัสดีครับ", 4, "สวัส..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestGenAIGenerator_PromptStaysValidUTF8(t *testing.T) {
	in := sampleInput()
	in.Feedback = []domain.Feedback{{Body: strings.Repeat("ü", maxFeedbackChars+50)}}
	model := &stubModel{text: "ok"}

	_, err := NewGenAIGenerator(model, nil).Generate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(model.prompt))
	assert.Contains(t, model.prompt, strings.Repeat("ü", maxFeedbackChars)+"...")
}
