// Package pipeline ties the workflow together: cache check, article fetch,
// document extraction, quiz generation, persistence.
package pipeline

import (
	"context"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"wikiquiz/internal/diag"
	"wikiquiz/internal/extract"
	"wikiquiz/internal/llm"
	"wikiquiz/internal/model"
	"wikiquiz/internal/worker"
)

// ArticleFetcher retrieves raw article markup for a validated URL.
type ArticleFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// QuizGenerator turns a source document into a quiz plus best-effort
// entities.
type QuizGenerator interface {
	Generate(ctx context.Context, doc *model.SourceDocument) (*model.GeneratedQuiz, error)
	ExtractEntities(ctx context.Context, doc *model.SourceDocument) model.EntityBundle
}

// QuizStore is the persistence gateway the pipeline writes through.
type QuizStore interface {
	FindByURL(ctx context.Context, url string) (*model.QuizRecord, error)
	FindByID(ctx context.Context, id int64) (*model.QuizRecord, error)
	Create(ctx context.Context, record *model.QuizRecord) error
	ListAll(ctx context.Context) ([]model.QuizRecordSummary, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Pipeline is the service object handed to request handlers. Constructed
// once at process start; no module-level state.
type Pipeline struct {
	fetcher   ArticleFetcher
	extractor *extract.Extractor
	generator QuizGenerator
	store     QuizStore
	titles    *gocache.Cache // preview titles by URL
}

// New creates a fully wired pipeline from configuration.
func New(cfg *model.Config, provider llm.Provider, store QuizStore, sink diag.Sink) *Pipeline {
	limiter := worker.NewLimiter(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst)

	return &Pipeline{
		fetcher:   NewFetcher(cfg.HTTP, limiter),
		extractor: extract.NewExtractor(cfg.Extract),
		generator: NewGenerator(provider, cfg.LLM, sink),
		store:     store,
		titles:    gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// NewWithParts creates a pipeline from explicit collaborators (used by
// tests and the batch command).
func NewWithParts(fetcher ArticleFetcher, extractor *extract.Extractor, generator QuizGenerator, store QuizStore) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		generator: generator,
		store:     store,
		titles:    gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// GenerateFromURL runs the full workflow for one article URL. A persisted
// record for the URL short-circuits everything: no fetch, no model call.
// On a miss the completed record is written as a unit before returning.
func (p *Pipeline) GenerateFromURL(ctx context.Context, rawURL string) (*model.QuizRecord, error) {
	if err := ValidateArticleURL(rawURL); err != nil {
		return nil, err
	}

	if existing, err := p.store.FindByURL(ctx, rawURL); err != nil {
		return nil, err
	} else if existing != nil {
		log.Printf("cache hit for %s, returning stored quiz %d", rawURL, existing.ID)
		return existing, nil
	}

	rawHTML, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := p.extractor.Extract(rawHTML)
	if err != nil {
		return nil, err
	}
	if doc.Summary == "" {
		log.Printf("no summary found for %s", rawURL)
	}

	generated, err := p.generator.Generate(ctx, doc)
	if err != nil {
		return nil, err
	}

	entities := p.generator.ExtractEntities(ctx, doc)

	record := &model.QuizRecord{
		URL:           rawURL,
		Title:         doc.Title,
		Summary:       doc.Summary,
		Entities:      entities,
		Sections:      doc.Sections,
		Questions:     generated.Questions,
		RelatedTopics: generated.RelatedTopics,
		RawHTML:       doc.RawHTML,
	}

	if err := p.store.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("generated quiz %d for %q (%d questions)", record.ID, doc.Title, len(record.Questions))
	return record, nil
}

// Preview fetches and extracts just the article title, with a short-lived
// cache in front so repeated previews of the same URL stay cheap.
func (p *Pipeline) Preview(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateArticleURL(rawURL); err != nil {
		return "", err
	}

	if title, found := p.titles.Get(rawURL); found {
		return title.(string), nil
	}

	rawHTML, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	doc, err := p.extractor.Extract(rawHTML)
	if err != nil {
		return "", err
	}

	p.titles.Set(rawURL, doc.Title, gocache.DefaultExpiration)
	return doc.Title, nil
}

// History lists stored quizzes, newest first.
func (p *Pipeline) History(ctx context.Context) ([]model.QuizRecordSummary, error) {
	return p.store.ListAll(ctx)
}

// Get returns a stored quiz by ID, or nil when none exists.
func (p *Pipeline) Get(ctx context.Context, id int64) (*model.QuizRecord, error) {
	return p.store.FindByID(ctx, id)
}

// Delete removes a stored quiz. Returns the deleted record's title for the
// confirmation message, and false when no record existed.
func (p *Pipeline) Delete(ctx context.Context, id int64) (string, bool, error) {
	record, err := p.store.FindByID(ctx, id)
	if err != nil {
		return "", false, err
	}
	if record == nil {
		return "", false, nil
	}

	deleted, err := p.store.Delete(ctx, id)
	if err != nil {
		return "", false, err
	}
	if !deleted {
		return "", false, nil
	}
	return record.Title, true, nil
}
