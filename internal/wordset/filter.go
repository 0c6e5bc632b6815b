package wordset

import (
	"strings"

	"github.com/verte-zerg/spellbee/internal/word"
)

// Clean trims entries and drops blanks and duplicates, keeping the first
// spelling of each normalized word.
func Clean(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := word.Normalize(w)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}
