package review

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"teamperf/internal/domain"
	"teamperf/pkg/logger"
)

const (
	DefaultModel        = "gemini-2.5-flash"
	defaultModelTimeout = 20 * time.Second
	maxFeedbackInPrompt = 20
	maxFeedbackChars    = 500
)

// TextModel produces free text from a prompt
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenAIGenerator asks a language model for the narrative summary and keeps the
// template's scores, assessments and highlights. Model failures fall back to the
// template summary.
type GenAIGenerator struct {
	model    TextModel
	template *TemplateGenerator
	timeout  time.Duration
	logger   *logger.Logger
}

// NewGenAIGenerator wraps any TextModel
func NewGenAIGenerator(model TextModel, log *logger.Logger) *GenAIGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &GenAIGenerator{
		model:    model,
		template: NewTemplateGenerator(),
		timeout:  defaultModelTimeout,
		logger:   log,
	}
}

// NewGeminiGenerator connects to the Gemini API
func NewGeminiGenerator(ctx context.Context, apiKey, model string, log *logger.Logger) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewGenAIGenerator(&geminiModel{client: client, model: model}, log), nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, in Input) (*domain.ReviewDocument, error) {
	doc, err := g.template.Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.model.GenerateText(ctx, buildPrompt(in, doc))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		g.logger.Warn("Review narrative generation failed, using template summary",
			zap.String("member_id", in.Member.ID),
			zap.Error(err))
		return doc, nil
	}

	doc.Summary = text
	doc.GeneratedBy = GeneratedByGenAI
	return doc, nil
}

func buildPrompt(in Input, doc *domain.ReviewDocument) string {
	var b strings.Builder
	b.WriteString("Write a neutral, specific performance review summary of 3 to 5 sentences in plain text without markdown.\n")
	fmt.Fprintf(&b, "Person: %s\n", in.Member.Name)
	if in.Member.Title != nil {
		fmt.Fprintf(&b, "Role: %s\n", *in.Member.Title)
	}
	fmt.Fprintf(&b, "Period: %s to %s\n", in.Period.Start.Format("2006-01-02"), in.Period.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Overall: %.2f out of 5 (%s) from %d ratings\n", doc.OverallScore, doc.OverallBand, doc.RatingsConsidered)

	b.WriteString("Categories:\n")
	for _, c := range doc.CategoryAssessments {
		fmt.Fprintf(&b, "- %s: %.2f (%s, %d ratings)\n", c.CategoryName, c.AverageRating, c.Band, c.RatingsCount)
	}
	if len(doc.Strengths) > 0 {
		fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(doc.Strengths, ", "))
	}
	if len(doc.DevelopmentAreas) > 0 {
		fmt.Fprintf(&b, "Development areas: %s\n", strings.Join(doc.DevelopmentAreas, ", "))
	}

	if len(in.Feedback) > 0 {
		b.WriteString("Feedback notes:\n")
		for i, f := range in.Feedback {
			if i == maxFeedbackInPrompt {
				break
			}
			fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(truncateRunes(f.Body, maxFeedbackChars), "\n", " "))
		}
	}
	return b.String()
}

// truncateRunes cuts s to at most n characters without splitting one
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

type geminiModel struct {
	client *genai.Client
	model  string
}

func (m *geminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{MaxOutputTokens: 512},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}
