// Package quiz defines the output contract for model-generated quizzes:
// the target JSON shape and a tolerant decoder that coerces the frequently
// malformed output of an instruction-following text producer into a valid
// GeneratedQuiz.
package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"wikiquiz/internal/model"
)

// fenceRe matches a fenced code block wrapping a JSON object. Producers
// often wrap their output in one despite instructions not to.
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// placeholderOptions substitutes for a missing or malformed options array.
// The question survives in degraded form instead of being dropped.
var placeholderOptions = []string{"True", "False"}

// Decode coerces raw producer output into a GeneratedQuiz.
//
// Parsing is a pipeline of attempts: strip a code fence (or slice from the
// first '{' to the last '}'), normalize embedded line breaks, then parse
// strictly, retry without trailing commas, and finally run a best-effort
// structural repair. If no attempt yields a JSON value the error wraps
// model.ErrParse. A parseable but unusable payload (no quiz array, zero
// surviving questions) wraps model.ErrValidation instead.
func Decode(raw string) (*model.GeneratedQuiz, error) {
	candidate := extractCandidate(raw)
	if candidate == "" {
		return nil, fmt.Errorf("no JSON object in response: %w", model.ErrParse)
	}

	candidate = normalizeWhitespace(candidate)

	value, err := parseWithRepair(candidate)
	if err != nil {
		return nil, fmt.Errorf("parse response: %v: %w", err, model.ErrParse)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is not an object: %w", model.ErrValidation)
	}

	return assemble(obj)
}

// extractCandidate picks the JSON substring from the producer's response:
// the inside of a fenced code block if one is present, otherwise the span
// from the first '{' to the last '}'. Returns "" when neither exists.
func extractCandidate(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

// normalizeWhitespace folds literal line breaks and runs of whitespace into
// single spaces. Producers emit literal newlines inside string values, which
// strict JSON rejects.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseWithRepair attempts a strict parse, then a pass without trailing
// commas, then a best-effort structural repair.
func parseWithRepair(candidate string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err == nil {
		return value, nil
	}

	stripped := stripTrailingCommas(candidate)
	if err := json.Unmarshal([]byte(stripped), &value); err == nil {
		return value, nil
	}

	repaired := repairJSON(stripped)
	if err := json.Unmarshal([]byte(repaired), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// stripTrailingCommas removes commas immediately preceding a closing brace
// or bracket, ignoring comma characters inside string literals.
func stripTrailingCommas(s string) string {
	var out []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}

		if c == ',' {
			// Look ahead past whitespace for a closer.
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		out = append(out, c)
	}

	return string(out)
}

// repairJSON makes a last-ditch structural repair: it closes an unterminated
// string literal and appends closers for any unbalanced braces or brackets.
// The result is not guaranteed to parse; it is only a better candidate than
// the input.
func repairJSON(s string) string {
	var stack []byte
	inString := false
	escaped := false
	end := len(s)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	out := s[:end]
	if inString {
		out += `"`
	}

	// A dangling comma before the appended closers would re-break the parse.
	trimmed := strings.TrimRight(out, " \t")
	if strings.HasSuffix(trimmed, ",") {
		out = strings.TrimSuffix(trimmed, ",")
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}

	return out
}

// assemble applies the post-parse validation and repair rules to a decoded
// top-level object. The batch fails only when no quiz array can be located
// or no question survives repair; every per-question defect short of a
// non-object element is coerced.
func assemble(obj map[string]any) (*model.GeneratedQuiz, error) {
	items, err := quizArray(obj)
	if err != nil {
		return nil, err
	}

	questions := make([]model.QuizQuestion, 0, len(items))
	for _, item := range items {
		qm, ok := item.(map[string]any)
		if !ok {
			// Not a structural object at all; the only drop case.
			continue
		}
		questions = append(questions, repairQuestion(qm))
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no usable questions after repair: %w", model.ErrValidation)
	}

	return &model.GeneratedQuiz{
		Questions:     questions,
		RelatedTopics: relatedTopics(obj),
	}, nil
}

// quizArray locates the question array. The canonical field is "quiz"; when
// the producer renamed it, any array field whose elements look like question
// objects is accepted as a substitute.
func quizArray(obj map[string]any) ([]any, error) {
	if v, ok := obj["quiz"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("quiz field is not an array: %w", model.ErrValidation)
		}
		if len(arr) == 0 {
			return nil, fmt.Errorf("quiz array is empty: %w", model.ErrValidation)
		}
		return arr, nil
	}

	for key, v := range obj {
		if key == "related_topics" {
			continue
		}
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		if first, ok := arr[0].(map[string]any); ok {
			_, hasQuestion := first["question"]
			_, hasAnswer := first["answer"]
			if hasQuestion && hasAnswer {
				return arr, nil
			}
		}
	}

	return nil, fmt.Errorf("no quiz array in response: %w", model.ErrValidation)
}

// repairQuestion coerces a single question object into contract shape.
func repairQuestion(m map[string]any) model.QuizQuestion {
	q := model.QuizQuestion{
		Question:    asString(m["question"]),
		Answer:      asString(m["answer"]),
		Explanation: asString(m["explanation"]),
		Section:     asString(m["section"]),
	}

	options, ok := asStringSlice(m["options"])
	if !ok {
		// Missing or malformed options: keep the question in degraded
		// form rather than dropping it.
		options = append([]string(nil), placeholderOptions...)
	}

	// The stated answer always survives; membership is repaired by
	// appending, never by discarding the question.
	if q.Answer != "" && !containsString(options, q.Answer) {
		options = append(options, q.Answer)
	}

	// Producers occasionally send extra options; keep the answer and trim
	// back to the contract's four.
	if len(options) > model.OptionsPerQuestion {
		options = trimOptions(options, q.Answer)
	}
	q.Options = options

	q.Difficulty = strings.ToLower(asString(m["difficulty"]))
	switch q.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		q.Difficulty = model.DifficultyMedium
	}

	return q
}

// trimOptions reduces an oversized option list to the contract size while
// guaranteeing the answer stays in.
func trimOptions(options []string, answer string) []string {
	trimmed := options[:model.OptionsPerQuestion:model.OptionsPerQuestion]
	if answer == "" || containsString(trimmed, answer) {
		return trimmed
	}
	out := append([]string(nil), options[:model.OptionsPerQuestion-1]...)
	return append(out, answer)
}

// relatedTopics reads the optional related-topics list. Absence or a
// malformed value yields an empty list, never an error.
func relatedTopics(obj map[string]any) []string {
	topics, ok := asStringSlice(obj["related_topics"])
	if !ok {
		return []string{}
	}
	if len(topics) > model.MaxRelatedTopics {
		topics = topics[:model.MaxRelatedTopics]
	}
	return topics
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asStringSlice converts a decoded JSON array to strings, stringifying
// non-string scalars the producer slipped in.
func asStringSlice(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		switch t := item.(type) {
		case string:
			out = append(out, strings.TrimSpace(t))
		case float64:
			out = append(out, strings.TrimSpace(fmt.Sprintf("%v", t)))
		}
	}
	return out, true
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
