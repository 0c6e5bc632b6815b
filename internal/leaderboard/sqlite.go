package leaderboard

import (
	"context"
	"fmt"

	"github.com/verte-zerg/spellbee/internal/store"
)

// SQLiteBoard keeps entries in the local database.
type SQLiteBoard struct {
	st *store.Store
}

// NewSQLiteBoard returns a board over st.
func NewSQLiteBoard(st *store.Store) *SQLiteBoard {
	return &SQLiteBoard{st: st}
}

// Submit stores e unless the player already holds a better entry.
func (b *SQLiteBoard) Submit(ctx context.Context, setID string, e Entry) error {
	nickname, err := NormalizeNickname(e.Nickname)
	if err != nil {
		return err
	}
	e.Nickname = nickname
	_, err = b.st.PutScore(ctx, toScore(setID, e), func(old store.Score) bool {
		return Dominates(e, fromScore(old))
	})
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	return nil
}

// Top returns the best limit entries of a set.
func (b *SQLiteBoard) Top(ctx context.Context, setID string, limit int) ([]Entry, error) {
	rows, err := b.st.ListScores(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fromScore(row))
	}
	Sort(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Sets returns the ids of sets with stored entries.
func (b *SQLiteBoard) Sets(ctx context.Context) ([]string, error) {
	return b.st.ListScoreSets(ctx)
}

func toScore(setID string, e Entry) store.Score {
	return store.Score{
		ID:          e.ID,
		SetID:       setID,
		Nickname:    e.Nickname,
		Score:       e.Score,
		Total:       e.Total,
		BestStreak:  e.BestStreak,
		SubmittedAt: e.SubmittedAt,
	}
}

func fromScore(sc store.Score) Entry {
	return Entry{
		ID:          sc.ID,
		Nickname:    sc.Nickname,
		Score:       sc.Score,
		Total:       sc.Total,
		BestStreak:  sc.BestStreak,
		SubmittedAt: sc.SubmittedAt,
	}
}
