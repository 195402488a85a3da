package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseOutcome tags how a model response was turned into structured data.
type ParseOutcome string

const (
	// ParseStrict means the raw text unmarshalled as-is.
	ParseStrict ParseOutcome = "strict"
	// ParseCoerced means fences or surrounding prose had to be stripped.
	ParseCoerced ParseOutcome = "coerced"
	// ParseFailed means no JSON object could be extracted.
	ParseFailed ParseOutcome = "failed"
)

// CoerceJSON unmarshals a model response into v. Models asked for bare JSON
// still wrap it in code fences or prose often enough that a strict parse is
// not enough; the outcome tag tells the caller which path was taken instead
// of silently papering over it.
func CoerceJSON(raw string, v any) (ParseOutcome, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParseFailed, fmt.Errorf("ai: empty model response")
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return ParseStrict, nil
	}

	cleaned := strings.TrimPrefix(trimmed, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start >= 0 && end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return ParseFailed, fmt.Errorf("ai: parse model response: %w", err)
	}
	return ParseCoerced, nil
}
