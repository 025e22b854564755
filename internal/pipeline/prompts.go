package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"wikiquiz/internal/model"
)

const quizSystemPrompt = "You are an expert educational quiz generator. You create high-quality multiple-choice quizzes based strictly on the provided article content and reply with JSON only."

const entitySystemPrompt = "You extract named entities from article text and reply with JSON only."

// buildQuizPrompt constructs the single instruction prompt for quiz
// generation. The difficulty mix is advisory; the output contract does not
// mechanically enforce it.
func buildQuizPrompt(doc *model.SourceDocument, sections []string, content string) string {
	return fmt.Sprintf(`Your task is to create a high-quality quiz based STRICTLY on the provided Wikipedia article content.

CRITICAL RULES:
1. ALL questions MUST be answerable from the provided content
2. DO NOT add information not present in the article
3. Generate 7-10 questions with varied difficulty levels
4. Ensure factual accuracy - verify each answer against the content
5. Create diverse question types (factual, analytical, chronological)

Article Title: %s

Article Sections: %s

Article Content:
%s

Generate a quiz with the following requirements:

QUIZ QUESTIONS (7-10 questions):
- Mix of difficulty levels: 3-4 easy, 3-4 medium, 2-3 hard
- Easy: Direct facts from the article
- Medium: Require understanding and connection of concepts
- Hard: Require synthesis of multiple sections or deeper analysis
- Each question must have exactly 4 options
- The correct answer must be one of the 4 options
- Provide a brief explanation citing the relevant section
- Name the most relevant article section in the "section" field

RELATED TOPICS (exactly 5):
- Suggest 5 related Wikipedia topics for further reading
- Topics should be naturally related to the article subject
- Use proper Wikipedia article naming conventions

Return a JSON object with this exact shape:
{
  "quiz": [
    {
      "question": "...",
      "options": ["...", "...", "...", "..."],
      "answer": "...",
      "difficulty": "easy|medium|hard",
      "explanation": "...",
      "section": "..."
    }
  ],
  "related_topics": ["...", "...", "...", "...", "..."]
}

IMPORTANT: Return ONLY valid JSON matching the schema. No additional text.`,
		doc.Title, strings.Join(sections, ", "), content)
}

// buildEntityPrompt constructs the best-effort entity-extraction prompt.
func buildEntityPrompt(content string) string {
	return fmt.Sprintf(`Extract key entities from the following Wikipedia article content.

Identify and categorize:
- PEOPLE: Names of individuals mentioned
- ORGANIZATIONS: Companies, institutions, groups
- LOCATIONS: Countries, cities, places

Content:
%s

Return a JSON object with this exact shape:
{
  "people": ["..."],
  "organizations": ["..."],
  "locations": ["..."]
}

Return ONLY valid JSON matching the schema.`, content)
}

// truncate bounds the article text fed into a prompt. The producer has a
// finite context budget; source coverage is traded for reliability.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	// Don't split a multi-byte rune at the boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
