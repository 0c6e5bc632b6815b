// Package hint turns a wrong attempt into feedback of increasing specificity.
package hint

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/verte-zerg/spellbee/internal/align"
	"github.com/verte-zerg/spellbee/internal/word"
)

// Tier is the specificity level of a hint.
type Tier int

const (
	// TierStructural reveals the first letter and the letter count.
	TierStructural Tier = iota + 1
	// TierLetters marks each letter of the correct word as right or wrong.
	TierLetters
)

// State is the verdict for one position of the correct word.
type State int

const (
	// Correct means the learner typed this letter in the aligned position.
	Correct State = iota
	// Wrong means the letter was substituted or missing.
	Wrong
	// Space is a structural gap in multi-word entries and is never scored.
	Space
)

// WrongMarker is shown in place of letters the learner got wrong.
const WrongMarker = '_'

// Letter is one cell of letter feedback.
type Letter struct {
	Char  rune
	State State
}

// Display returns the rune a presentation layer should show for the cell.
func (l Letter) Display() rune {
	switch l.State {
	case Correct:
		return l.Char
	case Space:
		return ' '
	default:
		return WrongMarker
	}
}

// Hint describes the feedback for one wrong attempt.
type Hint struct {
	Tier         Tier
	First        rune
	Length       int
	Letters      []Letter
	AttemptsLeft int
}

// ForAttempt builds the hint for a wrong guess. The tier depends only on the
// attempt number: the first miss gets the structural hint, later misses get
// letter feedback against the guess just submitted.
func ForAttempt(correct, guess string, attempt, maxAttempts int) Hint {
	h := Hint{AttemptsLeft: maxAttempts - attempt}
	if h.AttemptsLeft < 0 {
		h.AttemptsLeft = 0
	}
	if attempt <= 1 {
		h.Tier = TierStructural
		h.First, h.Length = Structural(correct)
		return h
	}
	h.Tier = TierLetters
	h.Letters = Letters(correct, guess)
	return h
}

// Structural returns the upper-cased first letter of correct and its letter
// count excluding spaces.
func Structural(correct string) (rune, int) {
	trimmed := strings.TrimSpace(correct)
	var first rune
	for _, r := range trimmed {
		first = unicode.ToUpper(r)
		break
	}
	return first, word.Letters(trimmed)
}

// Letters aligns guess against correct and returns one cell per rune of the
// correct word. Extra runes typed by the learner are not represented.
func Letters(correct, guess string) []Letter {
	display := []rune(strings.TrimSpace(correct))
	norm := []rune(word.Normalize(correct))
	if len(display) != len(norm) {
		// Case folding changed the rune count; show the normalized form.
		display = norm
	}

	ops := align.Align(string(norm), word.Normalize(guess))
	out := make([]Letter, 0, len(norm))
	for _, op := range ops {
		if op.Kind == align.Insert {
			continue
		}
		if norm[op.CorrectIdx] == ' ' {
			out = append(out, Letter{Char: ' ', State: Space})
			continue
		}
		if op.Kind == align.Match {
			out = append(out, Letter{Char: display[op.CorrectIdx], State: Correct})
			continue
		}
		out = append(out, Letter{Char: display[op.CorrectIdx], State: Wrong})
	}
	return out
}

// Pattern renders letter feedback as plain text, e.g. "c_t".
func Pattern(letters []Letter) string {
	var b strings.Builder
	for _, l := range letters {
		b.WriteRune(l.Display())
	}
	return b.String()
}

// Summary is the one-line structural description.
func (h Hint) Summary() string {
	if h.Tier != TierStructural {
		return ""
	}
	return fmt.Sprintf("Starts with %c, %d letters (excluding spaces)", h.First, h.Length)
}

// AttemptsText is the retry prompt shown under every hint.
func (h Hint) AttemptsText() string {
	suffix := "s"
	if h.AttemptsLeft == 1 {
		suffix = ""
	}
	return fmt.Sprintf("Try again! (%d attempt%s left)", h.AttemptsLeft, suffix)
}
