package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/mox-desktop/moxnotify/internal/index"
	"github.com/mox-desktop/moxnotify/internal/model"
)

func addAt(t *testing.T, idx *index.Index, id uint32, ts time.Time) {
	t.Helper()
	require.NoError(t, idx.Add(index.FromNotification(model.Notification{
		ID:        id,
		UUID:      "u",
		AppName:   "app",
		Summary:   "summary",
		Timestamp: ts.UnixMilli(),
	})))
}

func TestJanitor_SweepRemovesExpiredDocuments(t *testing.T) {
	idx, err := index.OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now().UTC()
	addAt(t, idx, 1, now.Add(-100*24*time.Hour))
	addAt(t, idx, 2, now.Add(-91*24*time.Hour))
	addAt(t, idx, 3, now.Add(-time.Hour))

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	j := New(idx, 90*24*time.Hour, time.Hour, strategy)

	j.sweep(context.Background())

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestJanitor_SweepIsIdempotent(t *testing.T) {
	idx, err := index.OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now().UTC()
	addAt(t, idx, 1, now.Add(-10*24*time.Hour))

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	j := New(idx, 24*time.Hour, time.Hour, strategy)

	j.sweep(context.Background())
	j.sweep(context.Background())

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestJanitor_RunSweepsOnStartup(t *testing.T) {
	idx, err := index.OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now().UTC()
	addAt(t, idx, 1, now.Add(-10*24*time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	require.NoError(t, New(idx, 24*time.Hour, time.Hour, strategy).Run(ctx))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
