package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object in model output")

// ParseJSONObject extracts the first JSON object from model text. Code fences and
// surrounding prose are tolerated.
func ParseJSONObject(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrNoJSONObject
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj, nil
	}
	start := strings.Index(s, "{")
	if start < 0 {
		return nil, ErrNoJSONObject
	}
	end := matchingBrace(s, start)
	if end < 0 {
		return nil, ErrNoJSONObject
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// matchingBrace finds the closing brace for s[start], skipping braces inside strings.
func matchingBrace(s string, start int) int {
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// String reads a string field, "" when absent or mistyped.
func String(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// Float reads a numeric field.
func Float(obj map[string]any, key string) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Objects reads an array-of-objects field.
func Objects(obj map[string]any, key string) []map[string]any {
	if obj == nil {
		return nil
	}
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
