package quiz

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectWordsForRoundPrefersMistakes(t *testing.T) {
	all := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}
	mistakes := []string{"Three", "seven", "ten"}

	for seed := int64(0); seed < 50; seed++ {
		got := SelectWordsForRound(rand.New(rand.NewSource(seed)), all, 5, mistakes)
		if len(got) != 5 {
			t.Fatalf("seed %d: expected 5 words, got %v", seed, got)
		}
		seen := map[string]bool{}
		for _, w := range got {
			if seen[w] {
				t.Fatalf("seed %d: duplicate word %q in %v", seed, w, got)
			}
			seen[w] = true
		}
		for _, m := range []string{"three", "seven", "ten"} {
			if !seen[m] {
				t.Fatalf("seed %d: missing mistake %q in %v", seed, m, got)
			}
		}
	}
}

func TestSelectWordsForRoundCapsMistakes(t *testing.T) {
	all := []string{"a", "b", "c", "d", "e", "f"}
	mistakes := []string{"a", "b", "c", "d"}
	got := SelectWordsForRound(rand.New(rand.NewSource(7)), all, 2, mistakes)
	if len(got) != 2 {
		t.Fatalf("expected 2 words, got %v", got)
	}
	for _, w := range got {
		if w == "e" || w == "f" {
			t.Fatalf("untracked word %q picked while mistakes exceed limit", w)
		}
	}
}

func TestSelectWordsForRoundWithoutLimit(t *testing.T) {
	all := []string{"a", "b", "c", "d"}
	for _, limit := range []int{0, 4, 10} {
		got := SelectWordsForRound(rand.New(rand.NewSource(1)), all, limit, nil)
		sort.Strings(got)
		if diff := cmp.Diff(all, got); diff != "" {
			t.Fatalf("limit %d: expected permutation (-want +got):\n%s", limit, diff)
		}
	}
}

func TestShuffleKeepsInput(t *testing.T) {
	in := []string{"a", "b", "c"}
	out := Shuffle(rand.New(rand.NewSource(3)), in)
	if diff := cmp.Diff([]string{"a", "b", "c"}, in); diff != "" {
		t.Fatalf("input modified (-want +got):\n%s", diff)
	}
	sort.Strings(out)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("shuffle lost words (-want +got):\n%s", diff)
	}
}
