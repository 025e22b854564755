package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"wikiquiz/internal/diag"
	"wikiquiz/internal/llm"
	"wikiquiz/internal/model"
	"wikiquiz/internal/quiz"
)

// generationTemperature keeps the model factual rather than creative.
const generationTemperature = 0.3

// defaultSection is the fallback label when the article has no usable
// section headings.
const defaultSection = "General"

// Generator drives the text-generation provider through the quiz output
// contract.
type Generator struct {
	provider llm.Provider
	cfg      model.LLMConfig
	sink     diag.Sink
}

// NewGenerator creates a generator. A nil sink is replaced with a no-op.
func NewGenerator(provider llm.Provider, cfg model.LLMConfig, sink diag.Sink) *Generator {
	if sink == nil {
		sink = diag.NopSink{}
	}
	return &Generator{
		provider: provider,
		cfg:      cfg,
		sink:     sink,
	}
}

// Generate produces a quiz for the document. The provider is invoked
// exactly once; a failed or malformed call surfaces to the caller, which
// owns retry policy. On terminal parse failure the raw response text is
// handed to the diagnostic sink before the error is returned.
func (g *Generator) Generate(ctx context.Context, doc *model.SourceDocument) (*model.GeneratedQuiz, error) {
	if doc == nil || doc.Title == "" {
		return nil, fmt.Errorf("document has no title: %w", model.ErrValidation)
	}
	if doc.FullText == "" {
		return nil, fmt.Errorf("document has no body text: %w", model.ErrValidation)
	}

	sections := doc.Sections
	if len(sections) == 0 {
		sections = []string{defaultSection}
	}

	content := truncate(doc.FullText, g.cfg.MaxInputChars)
	prompt := buildQuizPrompt(doc, sections, content)

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		System:      quizSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation call: %v: %w", err, model.ErrTransient)
	}

	result, err := quiz.Decode(resp.Text)
	if err != nil {
		if errors.Is(err, model.ErrParse) {
			if sinkErr := g.sink.SaveRawResponse(doc.Title, resp.Text); sinkErr != nil {
				log.Printf("diag sink failed for %q: %v", doc.Title, sinkErr)
			}
		}
		return nil, err
	}

	return result, nil
}

// ExtractEntities runs the best-effort entity-extraction call. Every
// failure in this path is swallowed and replaced with an empty bundle; it
// must never cause the overall generation to fail.
func (g *Generator) ExtractEntities(ctx context.Context, doc *model.SourceDocument) model.EntityBundle {
	content := truncate(doc.FullText, g.cfg.EntityMaxInputChars)

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		System:      entitySystemPrompt,
		Prompt:      buildEntityPrompt(content),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		log.Printf("entity extraction failed for %q, continuing without: %v", doc.Title, err)
		return model.EntityBundle{}
	}

	bundle, err := quiz.DecodeEntities(resp.Text)
	if err != nil {
		log.Printf("entity parse failed for %q, continuing without: %v", doc.Title, err)
		return model.EntityBundle{}
	}

	return bundle
}
