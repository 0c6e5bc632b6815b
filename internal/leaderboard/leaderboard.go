// Package leaderboard ranks round results per word set and stores them on a
// local SQLite board or a shared Redis board.
package leaderboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/spellbee/internal/kv"
)

const (
	// MaxNicknameLen is the longest accepted nickname, in runes.
	MaxNicknameLen = 15
	// DefaultTop is the number of entries shown per board.
	DefaultTop = 5

	nicknameKey = "player-nickname"
)

// ErrNicknameEmpty is returned when a nickname is blank after trimming.
var ErrNicknameEmpty = errors.New("nickname is empty")

// Entry is one player's result on a set.
type Entry struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	BestStreak  int       `json:"best_streak"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewEntry builds an entry stamped with a fresh id and the current time.
func NewEntry(nickname string, score, total, bestStreak int) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Nickname:    nickname,
		Score:       score,
		Total:       total,
		BestStreak:  bestStreak,
		SubmittedAt: time.Now().UTC(),
	}
}

// Percent returns score/total in [0, 1].
func (e Entry) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Score) / float64(e.Total)
}

// Board stores and ranks entries per set.
type Board interface {
	Submit(ctx context.Context, setID string, e Entry) error
	Top(ctx context.Context, setID string, limit int) ([]Entry, error)
}

// Less reports whether a ranks above b: higher percentage, then longer best
// streak, then earlier submission.
func Less(a, b Entry) bool {
	pa, pb := a.Percent(), b.Percent()
	if pa != pb {
		return pa > pb
	}
	if a.BestStreak != b.BestStreak {
		return a.BestStreak > b.BestStreak
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}

// Sort orders entries by rank in place.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Dominates reports whether next should replace prev for the same player: a
// higher percentage, or an equal one with a longer best streak.
func Dominates(next, prev Entry) bool {
	pn, pp := next.Percent(), prev.Percent()
	if pn != pp {
		return pn > pp
	}
	return next.BestStreak > prev.BestStreak
}

// NormalizeNickname trims a nickname and cuts it to MaxNicknameLen runes.
func NormalizeNickname(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNicknameEmpty
	}
	if utf8.RuneCountInString(name) > MaxNicknameLen {
		name = strings.TrimSpace(string([]rune(name)[:MaxNicknameLen]))
	}
	return name, nil
}

// LoadNickname returns the remembered nickname, if any.
func LoadNickname(store kv.Store) string {
	if store == nil {
		return ""
	}
	name, ok, err := store.Get(nicknameKey)
	if err != nil || !ok {
		return ""
	}
	return name
}

// SaveNickname remembers name for the next save prompt.
func SaveNickname(store kv.Store, name string) error {
	if store == nil {
		return nil
	}
	return store.Set(nicknameKey, name)
}
