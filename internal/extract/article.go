package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"wikiquiz/internal/model"
)

// Extractor parses raw Wikipedia article markup into a SourceDocument.
type Extractor struct {
	maxSummaryParagraphs int
	sectionDenylist      map[string]bool
}

// NewExtractor creates an extractor with the given limits. A non-positive
// paragraph cap falls back to the default of five.
func NewExtractor(cfg model.ExtractConfig) *Extractor {
	maxParas := cfg.MaxSummaryParagraphs
	if maxParas <= 0 {
		maxParas = 5
	}

	denylist := make(map[string]bool, len(cfg.SectionDenylist))
	for _, s := range cfg.SectionDenylist {
		denylist[s] = true
	}

	return &Extractor{
		maxSummaryParagraphs: maxParas,
		sectionDenylist:      denylist,
	}
}

// Extract parses the article markup and returns a normalized document.
// It fails when no title heading or no body text can be recovered; an empty
// summary or section list is not an error.
func (e *Extractor) Extract(rawHTML string) (*model.SourceDocument, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", model.ErrExtraction)
	}

	title := e.extractTitle(doc)
	if title == "" {
		return nil, fmt.Errorf("no title heading found: %w", model.ErrExtraction)
	}

	content := e.contentRegion(doc)
	if content == nil {
		return nil, fmt.Errorf("no content region found: %w", model.ErrExtraction)
	}

	fullText := e.extractFullText(content)
	if fullText == "" {
		return nil, fmt.Errorf("no body text found: %w", model.ErrExtraction)
	}

	return &model.SourceDocument{
		Title:    title,
		Summary:  e.extractSummary(content),
		Sections: e.extractSections(content),
		FullText: fullText,
		RawHTML:  rawHTML,
	}, nil
}

// contentRegion locates the primary content container. Wikipedia pages can
// carry several div.mw-parser-output nodes (image descriptions, meta boxes);
// the real article body is the one holding the most paragraphs.
func (e *Extractor) contentRegion(doc *html.Node) *html.Node {
	candidates := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "mw-parser-output")
	})

	if len(candidates) == 0 {
		return findFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "div" && getAttribute(n, "id") == "mw-content-text"
		})
	}

	best := candidates[0]
	bestCount := countParagraphs(best)
	for _, c := range candidates[1:] {
		if count := countParagraphs(c); count > bestCount {
			best, bestCount = c, count
		}
	}
	return best
}

// extractTitle finds the article title by priority: the firstHeading id,
// the firstHeading class, then any top-level heading.
func (e *Extractor) extractTitle(doc *html.Node) string {
	title := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && getAttribute(n, "id") == "firstHeading"
	})
	if title == nil {
		title = findFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "h1" && hasClass(n, "firstHeading")
		})
	}
	if title == nil {
		title = findFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "h1"
		})
	}
	if title == nil {
		return ""
	}
	return nodeText(title)
}

// extractSummary walks the content region's direct children in document
// order, collecting paragraph text until the cap is hit or a heading/TOC
// boundary appears. Geographic "Coordinates:" artifacts are skipped.
func (e *Extractor) extractSummary(content *html.Node) string {
	var paragraphs []string

	for child := content.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}

		if child.Data == "p" {
			text := nodeText(child)
			if text == "" || strings.HasPrefix(text, "Coordinates:") {
				continue
			}
			paragraphs = append(paragraphs, text)
			if len(paragraphs) >= e.maxSummaryParagraphs {
				break
			}
			continue
		}

		// Stop at the first section heading or the table of contents.
		if child.Data == "h2" {
			break
		}
		if child.Data == "div" && (getAttribute(child, "id") == "toc" || hasClass(child, "toc")) {
			break
		}
	}

	return strings.Join(paragraphs, " ")
}

// extractSections collects second-level headings in document order,
// preferring the inner headline span over the heading's own text (the
// heading itself often carries edit-link decoration).
func (e *Extractor) extractSections(content *html.Node) []string {
	headings := findAll(content, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h2"
	})

	var sections []string
	for _, h := range headings {
		text := ""
		if span := findFirst(h, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "span" && hasClass(n, "mw-headline")
		}); span != nil {
			text = nodeText(span)
		} else {
			text = nodeText(h)
		}

		if text == "" || e.sectionDenylist[text] {
			continue
		}
		sections = append(sections, text)
	}
	return sections
}

// extractFullText concatenates all paragraph text in the content region
// after excising citation markers, reference lists, navigation boxes and
// info boxes.
func (e *Extractor) extractFullText(content *html.Node) string {
	var paragraphs []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isNoise(n) {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := cleanText(n); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(content)

	return strings.Join(paragraphs, " ")
}

// isNoise reports whether the node roots a subtree that should not
// contribute article text: citation superscripts, reference lists,
// navigation boxes, info boxes.
func isNoise(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "sup", "table", "div":
		return hasClass(n, "reference") || hasClass(n, "reflist") ||
			hasClass(n, "navbox") || hasClass(n, "infobox")
	}
	return false
}

// cleanText extracts the text of a node, skipping noise subtrees (inline
// citation markers live inside paragraphs).
func cleanText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isNoise(n) {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(buf.String()), " ")
}

func countParagraphs(n *html.Node) int {
	return len(findAll(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.Data == "p"
	}))
}
