package quiz

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/spellbee/internal/hint"
	"github.com/verte-zerg/spellbee/internal/kv"
	"github.com/verte-zerg/spellbee/internal/ledger"
	"github.com/verte-zerg/spellbee/internal/wordset"
)

type spoken struct {
	text string
	slow bool
}

type recordingSpeaker struct {
	calls []spoken
}

func (r *recordingSpeaker) Speak(text string, slow bool) {
	r.calls = append(r.calls, spoken{text: text, slow: slow})
}

func testSet(words ...string) wordset.Set {
	return wordset.Set{
		ID:           "test",
		Words:        words,
		Translations: map[string]string{"cat": "kočka"},
	}
}

func newTestSession(t *testing.T, set wordset.Set, store kv.Store, seed int64) (*Session, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(store, set.ID, 3, nil)
	s := New(set, Config{MaxAttempts: 3}, Deps{
		Ledger: l,
		Rand:   rand.New(rand.NewSource(seed)),
	})
	return s, l
}

// startInOrder retries seeds until the round plays words in the wanted order.
func startInOrder(t *testing.T, set wordset.Set, store kv.Store, want []string) (*Session, *ledger.Ledger) {
	t.Helper()
	for seed := int64(1); seed < 1000; seed++ {
		s, l := newTestSession(t, set, store, seed)
		if err := s.StartRound(set.Words, ModeAll); err != nil {
			t.Fatalf("start round: %v", err)
		}
		if cmp.Equal(s.Words(), want) {
			return s, l
		}
	}
	t.Fatalf("no seed produced order %v", want)
	return nil, nil
}

func TestEndToEndTwoWordRound(t *testing.T) {
	set := testSet("Cat", "Dog")
	s, l := startInOrder(t, set, kv.NewMemory(), []string{"Cat", "Dog"})

	res := s.SubmitGuess("cat")
	if res.Outcome != OutcomeSolved {
		t.Fatalf("expected first-try solve, got %v", res.Outcome)
	}
	snap := s.Snapshot()
	if snap.Score != 1 || snap.Streak != 1 {
		t.Fatalf("unexpected score/streak: %+v", snap)
	}
	if _, ok := l.Lookup("cat"); ok {
		t.Fatalf("never-missed word must not be tracked")
	}
	if !s.Advance() {
		t.Fatalf("expected advance after solve")
	}

	res = s.SubmitGuess("xog")
	if res.Outcome != OutcomeHint || res.Hint == nil || res.Hint.Tier != hint.TierStructural {
		t.Fatalf("expected structural hint, got %+v", res)
	}
	res = s.SubmitGuess("dog")
	if res.Outcome != OutcomeSolvedOnRetry || res.Attempt != 2 {
		t.Fatalf("expected retry solve on attempt 2, got %+v", res)
	}
	rec, ok := l.Lookup("dog")
	if !ok || rec.Streak != 0 {
		t.Fatalf("expected dog tracked with zero streak, got %+v ok=%v", rec, ok)
	}
	if !s.Advance() || !s.Done() {
		t.Fatalf("expected round to finish")
	}

	sum := s.Summary()
	if sum.Score != 1 || sum.Total != 2 {
		t.Fatalf("expected 1/2, got %d/%d", sum.Score, sum.Total)
	}
	if diff := cmp.Diff([]string{"Dog"}, sum.Missed); diff != "" {
		t.Fatalf("unexpected missed words (-want +got):\n%s", diff)
	}
	if sum.BestStreak != 1 {
		t.Fatalf("expected best streak 1, got %d", sum.BestStreak)
	}
}

func TestEmptyGuessConsumesNothing(t *testing.T) {
	s, _ := newTestSession(t, testSet("Cat"), kv.NewMemory(), 1)
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, blank := range []string{"", "   ", "\t"} {
		if res := s.SubmitGuess(blank); res.Outcome != OutcomeIgnored {
			t.Fatalf("expected blank guess to be ignored, got %v", res.Outcome)
		}
	}
	if snap := s.Snapshot(); snap.Attempt != 0 || snap.AttemptsLeft != 3 {
		t.Fatalf("blank guesses must not consume attempts: %+v", snap)
	}
}

func TestHintTierFollowsAttempt(t *testing.T) {
	s, _ := newTestSession(t, testSet("Curtain"), kv.NewMemory(), 1)
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	first := s.SubmitGuess("kurtain")
	if first.Hint == nil || first.Hint.Tier != hint.TierStructural || first.Hint.First != 'C' || first.Hint.Length != 7 {
		t.Fatalf("unexpected first hint: %+v", first.Hint)
	}
	second := s.SubmitGuess("curtin")
	if second.Hint == nil || second.Hint.Tier != hint.TierLetters {
		t.Fatalf("expected letter hint, got %+v", second.Hint)
	}
	if got := hint.Pattern(second.Hint.Letters); got != "Curt_in" {
		t.Fatalf("expected feedback against latest guess, got %q", got)
	}
	if snap := s.Snapshot(); snap.Hint != second.Hint || snap.AttemptsLeft != 1 {
		t.Fatalf("snapshot must carry the latest hint: %+v", snap)
	}
}

func TestRevealAfterMaxAttempts(t *testing.T) {
	s, l := newTestSession(t, testSet("Feather"), kv.NewMemory(), 1)
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.SubmitGuess("fether")
	s.SubmitGuess("fethar")
	res := s.SubmitGuess("feathur")
	if res.Outcome != OutcomeRevealed || res.Revealed != "Feather" {
		t.Fatalf("expected reveal, got %+v", res)
	}
	if rec, ok := l.Lookup("feather"); !ok || rec.Count != 1 || rec.Streak != 0 {
		t.Fatalf("expected one recorded miss, got %+v", rec)
	}
	if after := s.SubmitGuess("feather"); after.Outcome != OutcomeIgnored {
		t.Fatalf("revealed word must not accept guesses, got %v", after.Outcome)
	}
	snap := s.Snapshot()
	if snap.Revealed != "Feather" || snap.Score != 0 || snap.Streak != 0 {
		t.Fatalf("unexpected snapshot after reveal: %+v", snap)
	}
	if diff := cmp.Diff([]string{"Feather"}, snap.Missed); diff != "" {
		t.Fatalf("unexpected missed (-want +got):\n%s", diff)
	}
}

func TestAdvanceRequiresResolvedWord(t *testing.T) {
	s, _ := newTestSession(t, testSet("Cat", "Dog"), kv.NewMemory(), 1)
	if s.Advance() {
		t.Fatalf("advance without a round must fail")
	}
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Advance() {
		t.Fatalf("advance on an open word must fail")
	}
	s.SubmitGuess("zzz")
	if s.Advance() {
		t.Fatalf("advance after a hint must fail")
	}
	if snap := s.Snapshot(); snap.Index != 0 {
		t.Fatalf("expected index 0, got %d", snap.Index)
	}
}

func TestMasteryAcrossRounds(t *testing.T) {
	store := kv.NewMemory()
	set := testSet("Rough")
	l := ledger.New(store, set.ID, 3, nil)
	l.RecordWrong("rough")

	var mastered []bool
	for round := 0; round < 3; round++ {
		s := New(set, Config{}, Deps{Ledger: l, Rand: rand.New(rand.NewSource(1))})
		if err := s.StartSetRound(ModeAll); err != nil {
			t.Fatalf("start: %v", err)
		}
		mastered = append(mastered, s.SubmitGuess("ROUGH").Mastered)
	}
	if diff := cmp.Diff([]bool{false, false, true}, mastered); diff != "" {
		t.Fatalf("unexpected mastery sequence (-want +got):\n%s", diff)
	}
	if got := l.ListMistakes(set.Words); len(got) != 0 {
		t.Fatalf("expected mastered word removed, got %v", got)
	}
}

func TestRetryResetsTrackedStreak(t *testing.T) {
	store := kv.NewMemory()
	set := testSet("Mirror")
	l := ledger.New(store, set.ID, 3, nil)
	l.RecordWrong("mirror")
	l.RecordCorrectFirstAttempt("mirror")
	l.RecordCorrectFirstAttempt("mirror")

	s := New(set, Config{}, Deps{Ledger: l})
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.SubmitGuess("miror")
	res := s.SubmitGuess("mirror")
	if res.Outcome != OutcomeSolvedOnRetry || res.Mastered {
		t.Fatalf("retry must not master: %+v", res)
	}
	if rec, _ := l.Lookup("mirror"); rec.Streak != 0 || rec.Count != 1 {
		t.Fatalf("expected streak reset and count kept, got %+v", rec)
	}
	if snap := s.Snapshot(); snap.Score != 0 {
		t.Fatalf("retry must not score, got %d", snap.Score)
	}
}

func TestMistakesRoundSnapshotsMembership(t *testing.T) {
	store := kv.NewMemory()
	set := testSet("Threw", "Wrote", "Knew", "Light")
	l := ledger.New(store, set.ID, 1, nil)
	l.RecordWrong("threw")
	l.RecordWrong("knew")

	s := New(set, Config{}, Deps{Ledger: l, Rand: rand.New(rand.NewSource(3))})
	if err := s.StartSetRound(ModeMistakes); err != nil {
		t.Fatalf("start: %v", err)
	}
	words := s.Words()
	if len(words) != 2 {
		t.Fatalf("expected 2 mistake words, got %v", words)
	}
	res := s.SubmitGuess(words[0])
	if !res.Mastered {
		t.Fatalf("expected mastery with threshold 1")
	}
	s.Advance()
	if snap := s.Snapshot(); snap.Total != 2 || snap.Index != 1 || snap.Mode != ModeMistakes {
		t.Fatalf("round must keep its word list: %+v", snap)
	}
}

func TestStartRoundErrors(t *testing.T) {
	s, _ := newTestSession(t, testSet("Cat"), kv.NewMemory(), 1)
	if err := s.StartRound(nil, ModeAll); !errors.Is(err, ErrEmptyRound) {
		t.Fatalf("expected ErrEmptyRound, got %v", err)
	}
	if err := s.StartSetRound(ModeMistakes); !errors.Is(err, ErrNoMistakes) {
		t.Fatalf("expected ErrNoMistakes, got %v", err)
	}
	bare := New(testSet("Cat"), Config{}, Deps{})
	if err := bare.StartSetRound(ModeMistakes); !errors.Is(err, ErrNoMistakes) {
		t.Fatalf("expected ErrNoMistakes without a ledger, got %v", err)
	}
}

func TestRunsWithoutCollaborators(t *testing.T) {
	s := New(testSet("Cat"), Config{}, Deps{})
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Repeat(true)
	if res := s.SubmitGuess("cat"); res.Outcome != OutcomeSolved {
		t.Fatalf("expected solve without collaborators, got %v", res.Outcome)
	}
}

func TestSpeakerCalls(t *testing.T) {
	sp := &recordingSpeaker{}
	s := New(testSet("Cat"), Config{}, Deps{Speaker: sp})
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Repeat(true)
	s.SubmitGuess("cat")
	s.Advance()
	s.Repeat(false)

	want := []spoken{{text: "Cat"}, {text: "Cat", slow: true}}
	if diff := cmp.Diff(want, sp.calls, cmp.AllowUnexported(spoken{})); diff != "" {
		t.Fatalf("unexpected speech calls (-want +got):\n%s", diff)
	}
}

func TestStreakTracking(t *testing.T) {
	set := testSet("a1", "b2", "c3", "d4")
	s, _ := startInOrder(t, set, kv.NewMemory(), []string{"a1", "b2", "c3", "d4"})
	guesses := [][]string{{"a1"}, {"b2"}, {"x", "c3"}, {"d4"}}
	var streaks []int
	for _, g := range guesses {
		var res Result
		for _, guess := range g {
			res = s.SubmitGuess(guess)
		}
		streaks = append(streaks, res.Streak)
		s.Advance()
	}
	if diff := cmp.Diff([]int{1, 2, 0, 1}, streaks); diff != "" {
		t.Fatalf("unexpected streaks (-want +got):\n%s", diff)
	}
	if sum := s.Summary(); sum.BestStreak != 2 || sum.Score != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestSnapshotTranslation(t *testing.T) {
	s := New(testSet("Cat"), Config{}, Deps{})
	if err := s.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := s.Snapshot().Translation; got != "kočka" {
		t.Fatalf("expected translation, got %q", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	store := kv.NewMemory()
	a, _ := newTestSession(t, testSet("Cat"), store, 1)
	b, _ := newTestSession(t, testSet("Cat"), store, 2)
	if err := a.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start a: %v", err)
	}
	if err := b.StartSetRound(ModeAll); err != nil {
		t.Fatalf("start b: %v", err)
	}
	a.SubmitGuess("cat")
	if snap := b.Snapshot(); snap.Score != 0 || snap.Attempt != 0 {
		t.Fatalf("session b affected by session a: %+v", snap)
	}
}

func TestGuessMatchesAcrossApostrophesAndCase(t *testing.T) {
	set := testSet("Don't")
	s, _ := newTestSession(t, set, kv.NewMemory(), 1)
	if err := s.StartRound(set.Words, ModeAll); err != nil {
		t.Fatalf("start round: %v", err)
	}
	if res := s.SubmitGuess("  DON’T "); res.Outcome != OutcomeSolved {
		t.Fatalf("expected curly apostrophe guess to solve, got %v", res.Outcome)
	}
}
