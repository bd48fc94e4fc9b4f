// Package ai holds the document-generation port and its production
// implementation on top of an OpenAI-compatible chat completion API.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ideaforge/ideaforge/internal/model"
)

// ErrEmptyCompletion indicates the provider answered with no usable
// text; callers treat it like any other generation failure.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// GenerationContext carries everything the provider may use to write
// a document: the raw idea text, any prior analysis outcome, and the
// latest version of each sibling planning document when present.
type GenerationContext struct {
	IdeaText                string
	AnalysisScore           *int
	AnalysisFeedback        string
	ExistingPRD             string
	ExistingTechnicalDesign string
	ExistingArchitecture    string
}

// Generator is the AI document-generation port consumed by the
// orchestrator. Implementations own their own timeouts; a timeout
// surfaces as an ordinary error and triggers the caller's refund
// path like any other failure.
type Generator interface {
	GenerateDocument(ctx context.Context, docType model.DocumentType, gc GenerationContext) (string, error)
}

// Config selects the provider endpoint and model.
type Config struct {
	BaseURL string // OpenAI-compatible endpoint, e.g. https://api.openai.com/v1
	APIKey  string
	Model   string // e.g. gpt-4o-mini
}

// OpenAIGenerator implements Generator via langchaingo's OpenAI
// client, which also covers self-hosted OpenAI-compatible servers.
type OpenAIGenerator struct {
	llm   *openai.LLM
	model string
}

// NewOpenAIGenerator builds the production generator.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		// the client requires a token even for keyless local servers
		apiKey = "placeholder"
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return &OpenAIGenerator{llm: llm, model: cfg.Model}, nil
}

// GenerateDocument renders the prompt for docType and asks the model
// for a completion.
func (g *OpenAIGenerator) GenerateDocument(ctx context.Context, docType model.DocumentType, gc GenerationContext) (string, error) {
	prompt := buildPrompt(docType, gc)
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", docType, err)
	}
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
