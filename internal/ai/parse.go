package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrParseFailed = errors.New("parse_failed")

// ParseSuggestion extracts the first JSON object from the model output. It
// tries the whole text first, then the substring between the outermost braces
// (models like to wrap JSON in code fences or commentary).
func ParseSuggestion(text string) (*Suggestion, error) {
	candidates := []string{strings.TrimSpace(text)}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidates = append(candidates, text[start:end+1])
		}
	}
	for _, c := range candidates {
		var s Suggestion
		if err := json.Unmarshal([]byte(c), &s); err != nil {
			continue
		}
		s.Name = strings.TrimSpace(s.Name)
		s.Category = strings.TrimSpace(s.Category)
		if s.Name == "" {
			continue
		}
		return &s, nil
	}
	return nil, fmt.Errorf("%w: no suggestion object found", ErrParseFailed)
}
