// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the key-value table and local scores.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT NOT NULL,
			set_id TEXT NOT NULL,
			nickname_key TEXT NOT NULL,
			nickname TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			best_streak INTEGER NOT NULL,
			submitted_at TEXT NOT NULL,
			PRIMARY KEY (set_id, nickname_key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_set_id ON scores(set_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(), `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Score is one stored leaderboard row.
type Score struct {
	ID          string
	SetID       string
	Nickname    string
	Score       int
	Total       int
	BestStreak  int
	SubmittedAt time.Time
}

// NicknameKey returns the case-insensitive identity of a nickname.
func NicknameKey(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// PutScore stores sc unless a row for the same set and nickname exists and
// better reports that sc does not improve on it. It returns whether sc was
// written.
func (s *Store) PutScore(ctx context.Context, sc Score, better func(old Score) bool) (written bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	key := NicknameKey(sc.Nickname)
	var old Score
	var submittedAt string
	err = tx.QueryRowContext(ctx,
		`SELECT id, set_id, nickname, score, total, best_streak, submitted_at
		 FROM scores WHERE set_id = ? AND nickname_key = ?`, sc.SetID, key,
	).Scan(&old.ID, &old.SetID, &old.Nickname, &old.Score, &old.Total, &old.BestStreak, &submittedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return false, err
	default:
		if old.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt); err != nil {
			return false, err
		}
		if better != nil && !better(old) {
			err = tx.Commit()
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO scores (id, set_id, nickname_key, nickname, score, total, best_streak, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.SetID, key, strings.TrimSpace(sc.Nickname), sc.Score, sc.Total, sc.BestStreak,
		sc.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ListScores returns every stored row for a set, unordered.
func (s *Store) ListScores(ctx context.Context, setID string) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, set_id, nickname, score, total, best_streak, submitted_at
		 FROM scores WHERE set_id = ?`, setID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []Score
	for rows.Next() {
		var sc Score
		var submittedAt string
		if err := rows.Scan(&sc.ID, &sc.SetID, &sc.Nickname, &sc.Score, &sc.Total, &sc.BestStreak, &submittedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, submittedAt)
		if err != nil {
			return nil, err
		}
		sc.SubmittedAt = parsed
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListScoreSets returns the ids of sets that have at least one score.
func (s *Store) ListScoreSets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT set_id FROM scores ORDER BY set_id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
