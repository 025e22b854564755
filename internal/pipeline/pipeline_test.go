package pipeline

import (
	"context"
	"errors"
	"testing"

	"wikiquiz/internal/extract"
	"wikiquiz/internal/model"
)

const fixtureHTML = `
<html><body>
<h1 id="firstHeading">Alan Turing</h1>
<div class="mw-parser-output">
  <p>Alan Turing was an English mathematician.</p>
  <h2><span class="mw-headline">Career</span></h2>
  <p>He worked at Bletchley Park.</p>
</div>
</body></html>`

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

type fakeGenerator struct {
	quiz  *model.GeneratedQuiz
	err   error
	calls int
}

func (g *fakeGenerator) Generate(ctx context.Context, doc *model.SourceDocument) (*model.GeneratedQuiz, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.quiz, nil
}

func (g *fakeGenerator) ExtractEntities(ctx context.Context, doc *model.SourceDocument) model.EntityBundle {
	return model.EntityBundle{People: []string{"Alan Turing"}}
}

type fakeStore struct {
	records map[int64]*model.QuizRecord
	byURL   map[string]*model.QuizRecord
	nextID  int64

	findByURLCalls int
	createCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[int64]*model.QuizRecord),
		byURL:   make(map[string]*model.QuizRecord),
		nextID:  1,
	}
}

func (s *fakeStore) FindByURL(ctx context.Context, url string) (*model.QuizRecord, error) {
	s.findByURLCalls++
	return s.byURL[url], nil
}

func (s *fakeStore) FindByID(ctx context.Context, id int64) (*model.QuizRecord, error) {
	return s.records[id], nil
}

func (s *fakeStore) Create(ctx context.Context, record *model.QuizRecord) error {
	s.createCalls++
	record.ID = s.nextID
	s.nextID++
	s.records[record.ID] = record
	s.byURL[record.URL] = record
	return nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]model.QuizRecordSummary, error) {
	var out []model.QuizRecordSummary
	for _, r := range s.records {
		out = append(out, model.QuizRecordSummary{ID: r.ID, URL: r.URL, Title: r.Title})
	}
	return out, nil
}

func (s *fakeStore) Delete(ctx context.Context, id int64) (bool, error) {
	r, ok := s.records[id]
	if !ok {
		return false, nil
	}
	delete(s.records, id)
	delete(s.byURL, r.URL)
	return true, nil
}

func testQuiz() *model.GeneratedQuiz {
	return &model.GeneratedQuiz{
		Questions: []model.QuizQuestion{
			{
				Question:   "Where did Turing work?",
				Options:    []string{"Bletchley Park", "Cambridge", "Oxford", "Manchester"},
				Answer:     "Bletchley Park",
				Difficulty: model.DifficultyEasy,
			},
		},
		RelatedTopics: []string{"Cryptanalysis"},
	}
}

func testPipeline(fetcher *fakeFetcher, gen *fakeGenerator, store *fakeStore) *Pipeline {
	return NewWithParts(fetcher, extract.NewExtractor(model.DefaultConfig().Extract), gen, store)
}

const articleURL = "https://en.wikipedia.org/wiki/Alan_Turing"

func TestGenerateFromURL(t *testing.T) {
	fetcher := &fakeFetcher{html: fixtureHTML}
	gen := &fakeGenerator{quiz: testQuiz()}
	store := newFakeStore()
	p := testPipeline(fetcher, gen, store)

	record, err := p.GenerateFromURL(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("GenerateFromURL() error = %v", err)
	}

	if record.ID == 0 {
		t.Error("record should have a persisted ID")
	}
	if record.Title != "Alan Turing" {
		t.Errorf("Title = %q, want %q", record.Title, "Alan Turing")
	}
	if record.URL != articleURL {
		t.Errorf("URL = %q, want %q", record.URL, articleURL)
	}
	if len(record.Questions) != 1 {
		t.Errorf("got %d questions, want 1", len(record.Questions))
	}
	if len(record.Entities.People) != 1 {
		t.Errorf("Entities.People = %v", record.Entities.People)
	}
	if store.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", store.createCalls)
	}
}

func TestGenerateFromURLCacheHit(t *testing.T) {
	fetcher := &fakeFetcher{html: fixtureHTML}
	gen := &fakeGenerator{quiz: testQuiz()}
	store := newFakeStore()
	p := testPipeline(fetcher, gen, store)

	first, err := p.GenerateFromURL(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("first GenerateFromURL() error = %v", err)
	}

	second, err := p.GenerateFromURL(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("second GenerateFromURL() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("cache hit should return the stored record, got IDs %d and %d", first.ID, second.ID)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 (no fetch on cache hit)", fetcher.calls)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1 (no model call on cache hit)", gen.calls)
	}
	if store.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", store.createCalls)
	}
}

func TestGenerateFromURLInvalidURL(t *testing.T) {
	fetcher := &fakeFetcher{html: fixtureHTML}
	store := newFakeStore()
	p := testPipeline(fetcher, &fakeGenerator{quiz: testQuiz()}, store)

	_, err := p.GenerateFromURL(context.Background(), "https://example.com/wiki/Nope")
	if !errors.Is(err, model.ErrInvalidSource) {
		t.Errorf("error = %v, want ErrInvalidSource", err)
	}
	if store.findByURLCalls != 0 {
		t.Error("invalid URLs should be rejected before any store lookup")
	}
	if fetcher.calls != 0 {
		t.Error("invalid URLs should be rejected before any fetch")
	}
}

func TestGenerateFromURLGeneratorFailureNotPersisted(t *testing.T) {
	fetcher := &fakeFetcher{html: fixtureHTML}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	store := newFakeStore()
	p := testPipeline(fetcher, gen, store)

	_, err := p.GenerateFromURL(context.Background(), articleURL)
	if err == nil {
		t.Fatal("GenerateFromURL() should fail when generation fails")
	}
	if store.createCalls != 0 {
		t.Error("a failed generation must not persist anything")
	}
}

func TestGenerateFromURLFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: model.ErrNotFound}
	gen := &fakeGenerator{quiz: testQuiz()}
	p := testPipeline(fetcher, gen, newFakeStore())

	_, err := p.GenerateFromURL(context.Background(), articleURL)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if gen.calls != 0 {
		t.Error("no generation should run when the fetch fails")
	}
}

func TestPreviewCachesTitle(t *testing.T) {
	fetcher := &fakeFetcher{html: fixtureHTML}
	p := testPipeline(fetcher, &fakeGenerator{quiz: testQuiz()}, newFakeStore())

	title, err := p.Preview(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if title != "Alan Turing" {
		t.Errorf("title = %q, want %q", title, "Alan Turing")
	}

	if _, err := p.Preview(context.Background(), articleURL); err != nil {
		t.Fatalf("second Preview() error = %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 (second preview served from cache)", fetcher.calls)
	}
}

func TestDelete(t *testing.T) {
	fetcher := &fakeFetcher{html: fixtureHTML}
	store := newFakeStore()
	p := testPipeline(fetcher, &fakeGenerator{quiz: testQuiz()}, store)

	record, err := p.GenerateFromURL(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("GenerateFromURL() error = %v", err)
	}

	title, deleted, err := p.Delete(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Fatal("Delete() should report the record as deleted")
	}
	if title != "Alan Turing" {
		t.Errorf("title = %q, want %q", title, "Alan Turing")
	}

	_, deleted, err = p.Delete(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if deleted {
		t.Error("deleting a missing record should report false")
	}
}
