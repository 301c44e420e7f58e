package janitor

import (
	"context"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// sweepLimit bounds one pass; anything beyond it waits for the next
// scheduled sweep.
const sweepLimit = 1_000_000

// SweepIndex is the slice of the index the janitor needs.
type SweepIndex interface {
	DeleteOlderThan(cutoff time.Time, limit int) (int, error)
	DocCount() (uint64, error)
}

// Janitor deletes indexed notifications older than the retention period,
// once at startup and then on every schedule tick.
type Janitor struct {
	index    SweepIndex
	period   time.Duration
	schedule time.Duration
	strategy retry.Strategy
}

func New(index SweepIndex, period, schedule time.Duration, strategy retry.Strategy) *Janitor {
	return &Janitor{index: index, period: period, schedule: schedule, strategy: strategy}
}

// Run sweeps immediately, then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	j.sweep(ctx)

	ticker := time.NewTicker(j.schedule)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// sweep removes everything at or past the retention horizon. Failures
// are retried a few times and otherwise left for the next tick; the
// sweep is idempotent.
func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.period)

	var removed int
	err := retry.Do(func() error {
		var err error
		removed, err = j.index.DeleteOlderThan(cutoff, sweepLimit)
		return err
	}, j.strategy)
	if err != nil {
		zlog.Logger.Error().Err(err).Time("cutoff", cutoff).Msg("retention sweep failed")
		return
	}

	remaining, err := j.index.DocCount()
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to count remaining documents")
	}

	zlog.Logger.Info().
		Time("cutoff", cutoff).
		Int("removed", removed).
		Uint64("remaining", remaining).
		Msg("retention sweep complete")
}
