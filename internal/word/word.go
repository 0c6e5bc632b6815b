// Package word holds the identity rules shared by every component that
// compares or stores spelling words.
package word

import "strings"

var apostrophes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"`", "'",
	"′", "'",
)

// Normalize trims surrounding whitespace, lowercases, and folds curly,
// backtick and prime apostrophes into a straight one.
func Normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Equal reports whether two words share the same normalized form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Letters counts the runes of w that are not whitespace.
func Letters(w string) int {
	n := 0
	for _, r := range w {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			continue
		}
		n++
	}
	return n
}
