// Package quiz runs spelling rounds: it owns the per-word attempt state
// machine, the round score and streaks, and the calls into the mistake
// ledger.
package quiz

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/spellbee/internal/hint"
	"github.com/verte-zerg/spellbee/internal/word"
	"github.com/verte-zerg/spellbee/internal/wordset"
)

// DefaultMaxAttempts is the number of guesses allowed per word.
const DefaultMaxAttempts = 3

var (
	// ErrEmptyRound is returned when a round would have no words.
	ErrEmptyRound = errors.New("round has no words")
	// ErrNoMistakes is returned when a mistakes round finds no tracked words.
	ErrNoMistakes = errors.New("no tracked mistakes for this set")
)

// Ledger records per-word mistake history.
type Ledger interface {
	RecordWrong(word string)
	RecordCorrectFirstAttempt(word string) bool
	RecordCorrectRetry(word string)
	ListMistakes(candidates []string) []string
}

// Speaker reads a word aloud without blocking.
type Speaker interface {
	Speak(text string, slow bool)
}

// Mode selects how a round's words are chosen.
type Mode int

const (
	// ModeAll plays the given words, limited by WordsPerRound when set.
	ModeAll Mode = iota
	// ModeMistakes plays only the given words that the ledger tracks.
	ModeMistakes
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeMistakes {
		return "mistakes"
	}
	return "all"
}

// Config holds per-session rules.
type Config struct {
	MaxAttempts   int
	WordsPerRound int
}

// Deps are the collaborators of a session. Every field is optional.
type Deps struct {
	Ledger  Ledger
	Speaker Speaker
	Logger  *zap.Logger
	Rand    *rand.Rand
}

// Outcome is the result class of a submitted guess.
type Outcome int

const (
	// OutcomeIgnored means the guess changed nothing: it was blank, or no
	// word is accepting input.
	OutcomeIgnored Outcome = iota
	// OutcomeHint means the guess was wrong and attempts remain.
	OutcomeHint
	// OutcomeSolved means the word was spelled right on the first attempt.
	OutcomeSolved
	// OutcomeSolvedOnRetry means the word was spelled right after a miss.
	OutcomeSolvedOnRetry
	// OutcomeRevealed means attempts ran out and the word was disclosed.
	OutcomeRevealed
)

// Result describes what a guess did.
type Result struct {
	Outcome  Outcome
	Attempt  int
	Hint     *hint.Hint
	Mastered bool
	Revealed string
	Streak   int
}

// Resolved reports whether the word accepts no more guesses.
func (r Result) Resolved() bool {
	switch r.Outcome {
	case OutcomeSolved, OutcomeSolvedOnRetry, OutcomeRevealed:
		return true
	default:
		return false
	}
}

type attemptState struct {
	attempt  int
	solved   bool
	revealed bool
	hint     *hint.Hint
}

func (a attemptState) resolved() bool {
	return a.solved || a.revealed
}

type roundState struct {
	id         string
	mode       Mode
	words      []string
	index      int
	score      int
	streak     int
	bestStreak int
	missed     []string
	missedKeys map[string]struct{}
}

func (r *roundState) addMissed(w string) {
	key := word.Normalize(w)
	if _, ok := r.missedKeys[key]; ok {
		return
	}
	r.missedKeys[key] = struct{}{}
	r.missed = append(r.missed, w)
}

// Session plays rounds over one word set. It is not safe for concurrent use;
// separate sessions share nothing.
type Session struct {
	set  wordset.Set
	cfg  Config
	deps Deps
	log  *zap.Logger

	round   *roundState
	current attemptState
}

// New returns a session for set.
func New(set wordset.Set, cfg Config, deps Deps) *Session {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.WordsPerRound < 0 {
		cfg.WordsPerRound = 0
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Rand == nil {
		deps.Rand = NewRand()
	}
	return &Session{
		set:  set,
		cfg:  cfg,
		deps: deps,
		log:  deps.Logger.With(zap.String("set", set.ID)),
	}
}

// Set returns the word set of the session.
func (s *Session) Set() wordset.Set {
	return s.set
}

// Mistakes returns the words of the set that the ledger currently tracks.
func (s *Session) Mistakes() []string {
	if s.deps.Ledger == nil {
		return nil
	}
	return s.deps.Ledger.ListMistakes(s.set.Words)
}

// StartRound discards any round in progress and starts a new one over
// words. Mistake membership is read once here; the round keeps its word list
// even when the ledger changes while it is played.
func (s *Session) StartRound(words []string, mode Mode) error {
	if len(words) == 0 {
		return ErrEmptyRound
	}
	var selected []string
	switch mode {
	case ModeMistakes:
		var tracked []string
		if s.deps.Ledger != nil {
			tracked = s.deps.Ledger.ListMistakes(words)
		}
		if len(tracked) == 0 {
			return ErrNoMistakes
		}
		selected = Shuffle(s.deps.Rand, tracked)
	default:
		mode = ModeAll
		if s.cfg.WordsPerRound > 0 {
			var tracked []string
			if s.deps.Ledger != nil {
				tracked = s.deps.Ledger.ListMistakes(words)
			}
			selected = SelectWordsForRound(s.deps.Rand, words, s.cfg.WordsPerRound, tracked)
		} else {
			selected = Shuffle(s.deps.Rand, words)
		}
	}

	s.round = &roundState{
		id:         uuid.NewString(),
		mode:       mode,
		words:      selected,
		missedKeys: map[string]struct{}{},
	}
	s.log.Debug("round started",
		zap.String("round", s.round.id),
		zap.Stringer("mode", mode),
		zap.Int("words", len(selected)),
	)
	s.present()
	return nil
}

// StartSetRound starts a round over the session's own word set.
func (s *Session) StartSetRound(mode Mode) error {
	return s.StartRound(s.set.Words, mode)
}

// SubmitGuess evaluates a guess for the current word.
func (s *Session) SubmitGuess(text string) Result {
	if !s.active() || s.current.resolved() {
		return Result{Outcome: OutcomeIgnored}
	}
	if word.Normalize(text) == "" {
		return Result{Outcome: OutcomeIgnored, Attempt: s.current.attempt}
	}

	r := s.round
	target := r.words[r.index]
	s.current.attempt++
	res := Result{Attempt: s.current.attempt}
	correct := word.Equal(text, target)

	switch {
	case correct && s.current.attempt == 1:
		s.current.solved = true
		r.score++
		r.streak++
		if r.streak > r.bestStreak {
			r.bestStreak = r.streak
		}
		if s.deps.Ledger != nil {
			res.Mastered = s.deps.Ledger.RecordCorrectFirstAttempt(target)
		}
		res.Outcome = OutcomeSolved
	case correct:
		s.current.solved = true
		r.addMissed(target)
		r.streak = 0
		if s.deps.Ledger != nil {
			s.deps.Ledger.RecordCorrectRetry(target)
		}
		res.Outcome = OutcomeSolvedOnRetry
	case s.current.attempt >= s.cfg.MaxAttempts:
		s.current.revealed = true
		r.addMissed(target)
		r.streak = 0
		if s.deps.Ledger != nil {
			s.deps.Ledger.RecordWrong(target)
		}
		res.Outcome = OutcomeRevealed
		res.Revealed = target
	default:
		h := hint.ForAttempt(target, text, s.current.attempt, s.cfg.MaxAttempts)
		s.current.hint = &h
		res.Outcome = OutcomeHint
		res.Hint = &h
	}
	if res.Resolved() {
		s.current.hint = nil
	}
	res.Streak = r.streak
	return res
}

// Advance moves past a resolved word. It reports false when the current
// word still accepts guesses or no round is running.
func (s *Session) Advance() bool {
	if !s.active() || !s.current.resolved() {
		return false
	}
	s.round.index++
	if s.Done() {
		s.log.Debug("round finished",
			zap.String("round", s.round.id),
			zap.Int("score", s.round.score),
			zap.Int("total", len(s.round.words)),
		)
		return true
	}
	s.present()
	return true
}

// Repeat speaks the current word again, optionally slowed down.
func (s *Session) Repeat(slow bool) {
	if !s.active() || s.deps.Speaker == nil {
		return
	}
	s.deps.Speaker.Speak(s.round.words[s.round.index], slow)
}

// Done reports whether the round has no more words.
func (s *Session) Done() bool {
	return s.round != nil && s.round.index >= len(s.round.words)
}

// Words returns the round's words in play order.
func (s *Session) Words() []string {
	if s.round == nil {
		return nil
	}
	out := make([]string, len(s.round.words))
	copy(out, s.round.words)
	return out
}

func (s *Session) active() bool {
	return s.round != nil && !s.Done()
}

func (s *Session) present() {
	s.current = attemptState{}
	if s.deps.Speaker != nil {
		s.deps.Speaker.Speak(s.round.words[s.round.index], false)
	}
}
