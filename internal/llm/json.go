package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON indicates the model output contained no decodable JSON value.
var ErrNoJSON = errors.New("no JSON object in llm output")

// DecodeJSON strictly unmarshals the model's output into v. Markdown code
// fences are stripped first and, when the model wraps the object in prose,
// the outermost {...} or [...] span is extracted. Unknown fields are
// rejected so a drifting response schema fails loudly and call sites take
// their typed fallback instead of half-filled results.
func DecodeJSON(raw string, v any) error {
	payload := extractJSON(raw)
	if payload == "" {
		return ErrNoJSON
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode llm json: %w", err)
	}
	return nil
}

// extractJSON strips markdown fences and returns the outermost JSON value.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip a leading ```json / ``` fence and its closing fence.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 {
			// Drop the language tag line, e.g. "json".
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start >= 0 && end > start {
			return s[start : end+1]
		}
	}
	return ""
}
