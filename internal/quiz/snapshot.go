package quiz

import "github.com/verte-zerg/spellbee/internal/hint"

// Snapshot is a read-only view of the round for rendering.
type Snapshot struct {
	RoundID      string
	Mode         Mode
	Index        int
	Total        int
	Score        int
	Streak       int
	BestStreak   int
	Attempt      int
	AttemptsLeft int
	Hint         *hint.Hint
	Solved       bool
	Revealed     string
	Translation  string
	Done         bool
	Missed       []string
}

// Snapshot returns the current round view. Without a round it is the zero
// value.
func (s *Session) Snapshot() Snapshot {
	r := s.round
	if r == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		RoundID:    r.id,
		Mode:       r.mode,
		Index:      r.index,
		Total:      len(r.words),
		Score:      r.score,
		Streak:     r.streak,
		BestStreak: r.bestStreak,
		Done:       s.Done(),
		Missed:     append([]string(nil), r.missed...),
	}
	if snap.Done {
		return snap
	}
	target := r.words[r.index]
	snap.Attempt = s.current.attempt
	snap.AttemptsLeft = s.cfg.MaxAttempts - s.current.attempt
	snap.Hint = s.current.hint
	snap.Solved = s.current.solved
	if s.current.revealed {
		snap.Revealed = target
	}
	snap.Translation = s.set.Translation(target)
	return snap
}

// Summary is the outcome of a finished round.
type Summary struct {
	RoundID    string
	SetID      string
	Mode       Mode
	Score      int
	Total      int
	BestStreak int
	Missed     []string
}

// Percent returns the score as a share of the total in [0, 1].
func (s Summary) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total)
}

// Perfect reports whether no word was missed.
func (s Summary) Perfect() bool {
	return s.Total > 0 && len(s.Missed) == 0
}

// Summary returns the round totals so far.
func (s *Session) Summary() Summary {
	r := s.round
	if r == nil {
		return Summary{SetID: s.set.ID}
	}
	return Summary{
		RoundID:    r.id,
		SetID:      s.set.ID,
		Mode:       r.mode,
		Score:      r.score,
		Total:      len(r.words),
		BestStreak: r.bestStreak,
		Missed:     append([]string(nil), r.missed...),
	}
}
