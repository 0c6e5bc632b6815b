// Package ledger tracks which words a learner has missed on this device.
//
// Every operation is best-effort: storage errors are logged and the ledger
// behaves as if it were empty, so gameplay never blocks on persistence. A
// failed read never turns into a write.
package ledger

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/verte-zerg/spellbee/internal/kv"
	"github.com/verte-zerg/spellbee/internal/word"
)

// DefaultMasteryThreshold is the first-try streak that clears a record.
const DefaultMasteryThreshold = 3

const keyPrefix = "mistakes-"

// Record is the mistake history of one word.
type Record struct {
	Count  int `json:"count"`
	Streak int `json:"streak"`
}

// Ledger stores mistake records for a single word set.
type Ledger struct {
	store     kv.Store
	setID     string
	threshold int
	log       *zap.Logger
}

// New returns a ledger for setID. A threshold <= 0 selects
// DefaultMasteryThreshold; a nil logger disables logging.
func New(store kv.Store, setID string, threshold int, log *zap.Logger) *Ledger {
	if threshold <= 0 {
		threshold = DefaultMasteryThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store:     store,
		setID:     setID,
		threshold: threshold,
		log:       log.With(zap.String("set", setID)),
	}
}

// Key returns the storage key holding the records of setID.
func Key(setID string) string {
	return keyPrefix + setID
}

// Threshold returns the first-attempt streak that masters a word.
func (l *Ledger) Threshold() int {
	return l.threshold
}

// RecordWrong counts a miss and resets the word's streak.
func (l *Ledger) RecordWrong(w string) {
	data, ok := l.load()
	if !ok {
		return
	}
	key := word.Normalize(w)
	rec := data[key]
	rec.Count++
	rec.Streak = 0
	data[key] = rec
	l.save(data)
}

// RecordCorrectFirstAttempt extends the streak of a tracked word and reports
// whether this success reached the mastery threshold. Untracked words are
// left alone.
func (l *Ledger) RecordCorrectFirstAttempt(w string) bool {
	data, ok := l.load()
	if !ok {
		return false
	}
	key := word.Normalize(w)
	rec, ok := data[key]
	if !ok {
		return false
	}
	rec.Streak++
	if rec.Streak >= l.threshold {
		delete(data, key)
		l.save(data)
		l.log.Debug("word mastered", zap.String("word", key))
		return true
	}
	data[key] = rec
	l.save(data)
	return false
}

// RecordCorrectRetry tracks a word solved after a wrong first attempt. The
// streak is forced to zero and an existing count is kept.
func (l *Ledger) RecordCorrectRetry(w string) {
	data, ok := l.load()
	if !ok {
		return
	}
	key := word.Normalize(w)
	rec := data[key]
	rec.Streak = 0
	data[key] = rec
	l.save(data)
}

// ListMistakes returns the candidates that currently have a record, in
// candidate order.
func (l *Ledger) ListMistakes(candidates []string) []string {
	data, _ := l.load()
	if len(data) == 0 {
		return nil
	}
	var out []string
	for _, c := range candidates {
		if _, ok := data[word.Normalize(c)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the record of w.
func (l *Ledger) Lookup(w string) (Record, bool) {
	data, _ := l.load()
	rec, ok := data[word.Normalize(w)]
	return rec, ok
}

// Entry pairs a normalized word with its record.
type Entry struct {
	Word string
	Record
}

// Entries returns every record, most missed first.
func (l *Ledger) Entries() []Entry {
	data, _ := l.load()
	out := make([]Entry, 0, len(data))
	for w, rec := range data {
		out = append(out, Entry{Word: w, Record: rec})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Word < out[j].Word
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// load returns the stored records. The bool is false when the store could
// not be read; callers must not write back in that case. Undecodable data
// reads as empty and may be overwritten.
func (l *Ledger) load() (map[string]Record, bool) {
	data := map[string]Record{}
	if l.store == nil {
		return data, false
	}
	raw, ok, err := l.store.Get(Key(l.setID))
	if err != nil {
		l.log.Warn("failed to read mistakes", zap.Error(err))
		return data, false
	}
	if !ok || raw == "" {
		return data, true
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		l.log.Warn("failed to decode mistakes", zap.Error(err))
		return map[string]Record{}, true
	}
	return data, true
}

func (l *Ledger) save(data map[string]Record) {
	if l.store == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		l.log.Warn("failed to encode mistakes", zap.Error(err))
		return
	}
	if err := l.store.Set(Key(l.setID), string(raw)); err != nil {
		l.log.Warn("failed to write mistakes", zap.Error(err))
	}
}
