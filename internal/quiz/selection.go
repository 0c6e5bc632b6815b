package quiz

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/spellbee/internal/word"
)

// NewRand returns a source seeded with the current time.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle returns a shuffled copy of words.
func Shuffle(rnd *rand.Rand, words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// SelectWordsForRound picks the words of one round. When limit is positive
// and the pool is larger, tracked mistakes are taken first (in random order,
// capped at limit), the rest is filled with random untracked words, and the
// final pick is shuffled again. Otherwise the whole pool is shuffled.
func SelectWordsForRound(rnd *rand.Rand, all []string, limit int, mistakes []string) []string {
	if limit <= 0 || len(all) <= limit {
		return Shuffle(rnd, all)
	}
	tracked := make(map[string]struct{}, len(mistakes))
	for _, m := range mistakes {
		tracked[word.Normalize(m)] = struct{}{}
	}
	var missed, rest []string
	for _, w := range all {
		if _, ok := tracked[word.Normalize(w)]; ok {
			missed = append(missed, w)
		} else {
			rest = append(rest, w)
		}
	}

	chosen := Shuffle(rnd, missed)
	if len(chosen) > limit {
		chosen = chosen[:limit]
	}
	if remaining := limit - len(chosen); remaining > 0 {
		fill := Shuffle(rnd, rest)
		if len(fill) > remaining {
			fill = fill[:remaining]
		}
		chosen = append(chosen, fill...)
	}
	return Shuffle(rnd, chosen)
}
