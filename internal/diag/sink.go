// Package diag side-stores raw model output that defeated every parse
// attempt, so operators can inspect it later. The sink sits outside the
// success path and is safe to no-op in tests.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Sink receives the raw text of unparseable model responses.
type Sink interface {
	SaveRawResponse(source string, raw string) error
}

// FileSink writes each offending response to its own file in a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates a file sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// SaveRawResponse writes the raw response with a small header naming the
// source and time of failure.
func (s *FileSink) SaveRawResponse(source string, raw string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create diag dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+".txt")
	content := fmt.Sprintf("Source: %s\nTime: %s\n\n%s\n", source, time.Now().UTC().Format(time.RFC3339), raw)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write diag file: %w", err)
	}
	return nil
}

// NopSink discards everything.
type NopSink struct{}

// SaveRawResponse discards the response.
func (NopSink) SaveRawResponse(string, string) error { return nil }
