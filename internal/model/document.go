package model

// SourceDocument is the normalized extraction of one Wikipedia article.
// It is built once per fetch and never mutated afterwards.
type SourceDocument struct {
	Title    string   `json:"title"`     // Article title (required)
	Summary  string   `json:"summary"`   // Intro paragraphs joined with spaces (may be empty)
	Sections []string `json:"sections"`  // Section headings, meta-sections filtered out
	FullText string   `json:"full_text"` // All paragraph text after noise removal (required)
	RawHTML  string   `json:"-"`         // Original markup, kept for storage only
}
