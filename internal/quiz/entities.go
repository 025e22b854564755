package quiz

import (
	"encoding/json"
	"fmt"

	"wikiquiz/internal/model"
)

// DecodeEntities parses a best-effort entity-extraction response. It runs
// the same candidate extraction and repair steps as Decode but tolerates
// far more: the caller swallows any error and falls back to an empty
// bundle, so there is no coercion beyond a clean parse.
func DecodeEntities(raw string) (model.EntityBundle, error) {
	var bundle model.EntityBundle

	candidate := extractCandidate(raw)
	if candidate == "" {
		return bundle, fmt.Errorf("no JSON object in response: %w", model.ErrParse)
	}

	value, err := parseWithRepair(normalizeWhitespace(candidate))
	if err != nil {
		return bundle, fmt.Errorf("parse entities: %v: %w", err, model.ErrParse)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return bundle, fmt.Errorf("entities value is not an object: %w", model.ErrValidation)
	}

	// Round-trip through JSON to reuse the struct tags; stray fields and
	// mistyped members simply drop out.
	b, err := json.Marshal(obj)
	if err != nil {
		return bundle, fmt.Errorf("re-encode entities: %w", err)
	}
	if err := json.Unmarshal(b, &bundle); err != nil {
		return bundle, fmt.Errorf("decode entities: %v: %w", err, model.ErrValidation)
	}

	return bundle, nil
}
