// Package analyst wraps the generative-AI scoring calls. Each batch of
// records goes out as one prompt carrying positional indices; the
// response is expected to be a JSON array that echoes those indices.
// The echoed indices are never trusted: every merge is bounds-checked
// and a malformed entry costs only itself, not the batch.
package analyst

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Config holds AI service configuration.
type Config struct {
	APIKey           string
	Model            string
	ScoreThreshold   int
	AnalysisMaxChars int
	Timeout          time.Duration
}

// Analyst scores news batches and analyzes macro batches through a
// generative text model.
type Analyst struct {
	client           *genai.Client
	model            string
	scoreThreshold   int
	analysisMaxChars int
	timeout          time.Duration
	logger           *slog.Logger
}

// New creates a new Analyst backed by the Gemini API.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Analyst, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Analyst{
		client:           client,
		model:            cfg.Model,
		scoreThreshold:   cfg.ScoreThreshold,
		analysisMaxChars: cfg.AnalysisMaxChars,
		timeout:          cfg.Timeout,
		logger:           logger.With("component", "analyst"),
	}, nil
}

// generate sends one prompt and returns the raw response text with any
// markdown code fence already stripped.
func (a *Analyst) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.3)),
	}

	resp, err := a.client.Models.GenerateContent(callCtx, a.model, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
			},
		},
	}, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return stripMarkdownFences(text), nil
}

var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// stripMarkdownFences removes a markdown code fence wrapping, which
// the model emits despite being told not to.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
