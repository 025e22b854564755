// Package store persists generated quizzes in SQLite, keyed by source URL.
// Records are written once as a unit and never updated; the store doubles
// as the generation cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"wikiquiz/internal/model"
)

// Store is a SQLite-backed quiz store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the quiz database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", model.ErrStore)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %v: %w", err, model.ErrStore)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	query := `CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		entities TEXT,
		sections TEXT,
		questions TEXT NOT NULL,
		related_topics TEXT,
		raw_html TEXT,
		created_at DATETIME NOT NULL
	)`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create tables: %v: %w", err, model.ErrStore)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_quizzes_url ON quizzes(url)`); err != nil {
		return fmt.Errorf("create index: %v: %w", err, model.ErrStore)
	}
	return nil
}

// Create inserts a complete quiz record, assigning its ID and creation
// timestamp. The write is all-or-nothing.
func (s *Store) Create(ctx context.Context, record *model.QuizRecord) error {
	entities, err := json.Marshal(record.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %v: %w", err, model.ErrStore)
	}
	sections, err := json.Marshal(record.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %v: %w", err, model.ErrStore)
	}
	questions, err := json.Marshal(record.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %v: %w", err, model.ErrStore)
	}
	topics, err := json.Marshal(record.RelatedTopics)
	if err != nil {
		return fmt.Errorf("marshal related topics: %v: %w", err, model.ErrStore)
	}

	createdAt := time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (url, title, summary, entities, sections, questions, related_topics, raw_html, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.URL, record.Title, record.Summary,
		string(entities), string(sections), string(questions), string(topics),
		record.RawHTML, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert quiz: %v: %w", err, model.ErrStore)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read insert id: %v: %w", err, model.ErrStore)
	}

	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

// FindByURL returns the record for a source URL, or nil when none exists.
func (s *Store) FindByURL(ctx context.Context, url string) (*model.QuizRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, summary, entities, sections, questions, related_topics, raw_html, created_at
		 FROM quizzes WHERE url = ?`, url)
	return scanRecord(row)
}

// FindByID returns the record with the given ID, or nil when none exists.
func (s *Store) FindByID(ctx context.Context, id int64) (*model.QuizRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, summary, entities, sections, questions, related_topics, raw_html, created_at
		 FROM quizzes WHERE id = ?`, id)
	return scanRecord(row)
}

// ListAll returns slim summaries of all stored quizzes, newest first.
func (s *Store) ListAll(ctx context.Context) ([]model.QuizRecordSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, created_at FROM quizzes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %v: %w", err, model.ErrStore)
	}
	defer func() { _ = rows.Close() }()

	summaries := []model.QuizRecordSummary{}
	for rows.Next() {
		var s model.QuizRecordSummary
		if err := rows.Scan(&s.ID, &s.URL, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz summary: %v: %w", err, model.ErrStore)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %v: %w", err, model.ErrStore)
	}

	return summaries, nil
}

// Delete removes a record by ID. Returns false when no record existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete quiz: %v: %w", err, model.ErrStore)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read rows affected: %v: %w", err, model.ErrStore)
	}
	return affected > 0, nil
}

func scanRecord(row *sql.Row) (*model.QuizRecord, error) {
	var (
		record   model.QuizRecord
		entities sql.NullString
		sections sql.NullString
		topics   sql.NullString
		rawHTML  sql.NullString
		qs       string
	)

	err := row.Scan(&record.ID, &record.URL, &record.Title, &record.Summary,
		&entities, &sections, &qs, &topics, &rawHTML, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan quiz: %v: %w", err, model.ErrStore)
	}

	if err := json.Unmarshal([]byte(qs), &record.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %v: %w", err, model.ErrStore)
	}
	if entities.Valid && entities.String != "" {
		if err := json.Unmarshal([]byte(entities.String), &record.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %v: %w", err, model.ErrStore)
		}
	}
	if sections.Valid && sections.String != "" {
		if err := json.Unmarshal([]byte(sections.String), &record.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal sections: %v: %w", err, model.ErrStore)
		}
	}
	if topics.Valid && topics.String != "" {
		if err := json.Unmarshal([]byte(topics.String), &record.RelatedTopics); err != nil {
			return nil, fmt.Errorf("unmarshal related topics: %v: %w", err, model.ErrStore)
		}
	}
	record.RawHTML = rawHTML.String

	return &record, nil
}
