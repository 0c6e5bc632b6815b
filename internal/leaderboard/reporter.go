package leaderboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSubmitTimeout bounds one background submission.
const DefaultSubmitTimeout = 5 * time.Second

// Reporter submits entries in the background so the caller never waits on
// the board.
type Reporter struct {
	board   Board
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewReporter returns a reporter for board. A nil board turns every call
// into a no-op.
func NewReporter(board Board, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{board: board, log: log, timeout: DefaultSubmitTimeout}
}

// Enabled reports whether a board is configured.
func (r *Reporter) Enabled() bool {
	return r != nil && r.board != nil
}

// Report submits e for setID on a new goroutine and calls done, if set, with
// the result.
func (r *Reporter) Report(setID string, e Entry, done func(error)) {
	if !r.Enabled() {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		err := r.board.Submit(ctx, setID, e)
		if err != nil {
			r.log.Warn("score submit failed",
				zap.String("set", setID),
				zap.String("nickname", e.Nickname),
				zap.Error(err),
			)
		}
		if done != nil {
			done(err)
		}
	}()
}

// Wait blocks until every pending submission has finished.
func (r *Reporter) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
