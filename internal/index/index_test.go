package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mox-desktop/moxnotify/internal/model"
)

func testDoc(id uint32, summary string, ts time.Time) Document {
	return FromNotification(model.Notification{
		ID:        id,
		UUID:      "test-uuid",
		AppName:   "testapp",
		Summary:   summary,
		Body:      "body text",
		Timeout:   -1,
		Timestamp: ts.UnixMilli(),
	})
}

func TestIndex_SearchBySummary(t *testing.T) {
	idx, err := OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now()
	require.NoError(t, idx.Add(testDoc(1, "deploy failed on staging", now)))
	require.NoError(t, idx.Add(testDoc(2, "build passed", now)))

	hits, err := idx.Search(SearchRequest{Query: "deploy"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "deploy failed on staging", hits[0]["summary"])
	assert.Equal(t, float64(1), hits[0]["id"])
}

func TestIndex_EmptyQueryMatchesAll(t *testing.T) {
	idx, err := OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now()
	require.NoError(t, idx.Add(testDoc(1, "one", now)))
	require.NoError(t, idx.Add(testDoc(2, "two", now)))

	hits, err := idx.Search(SearchRequest{Query: ""})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_RedeliveryKeepsDuplicates(t *testing.T) {
	idx, err := OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	doc := testDoc(1, "redelivered", time.Now())
	require.NoError(t, idx.Add(doc))
	require.NoError(t, idx.Add(doc))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	hits, err := idx.Search(SearchRequest{Query: "redelivered"})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_TimestampWindow(t *testing.T) {
	idx, err := OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now().UTC()
	require.NoError(t, idx.Add(testDoc(1, "old event", now.Add(-48*time.Hour))))
	require.NoError(t, idx.Add(testDoc(2, "new event", now)))

	start := now.Add(-time.Hour)
	hits, err := idx.Search(SearchRequest{Query: "event", Start: &start})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, float64(2), hits[0]["id"])
}

func TestIndex_SortByTimestampDescending(t *testing.T) {
	idx, err := OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now().UTC()
	require.NoError(t, idx.Add(testDoc(1, "event alpha", now.Add(-2*time.Hour))))
	require.NoError(t, idx.Add(testDoc(2, "event beta", now.Add(-time.Hour))))
	require.NoError(t, idx.Add(testDoc(3, "event gamma", now)))

	hits, err := idx.Search(SearchRequest{Query: "event", SortBy: "timestamp"})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, float64(3), hits[0]["id"])
	assert.Equal(t, float64(2), hits[1]["id"])
	assert.Equal(t, float64(1), hits[2]["id"])
}

func TestIndex_DeleteOlderThan(t *testing.T) {
	idx, err := OpenMem()
	require.NoError(t, err)
	defer idx.Close()

	now := time.Now().UTC()
	require.NoError(t, idx.Add(testDoc(1, "ancient", now.Add(-10*24*time.Hour))))
	require.NoError(t, idx.Add(testDoc(2, "stale", now.Add(-5*24*time.Hour))))
	require.NoError(t, idx.Add(testDoc(3, "fresh", now.Add(-time.Hour))))

	removed, err := idx.DeleteOlderThan(now.Add(-2*24*time.Hour), 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// Idempotent second pass.
	removed, err = idx.DeleteOlderThan(now.Add(-2*24*time.Hour), 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestFromNotification(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	n := model.Notification{
		ID:        7,
		UUID:      "u",
		AppName:   "mail",
		AppIcon:   "mail-unread",
		Summary:   "New message",
		Body:      "hello",
		Timeout:   5000,
		Timestamp: ts.UnixMilli(),
		Hints:     model.Hints{Category: "email.arrived"},
	}

	doc := FromNotification(n)
	assert.Equal(t, uint64(7), doc.ID)
	assert.Equal(t, ts, doc.Timestamp)
	assert.Equal(t, "email.arrived", doc.HintCategory)
	assert.Equal(t, int64(5000), doc.Timeout)
	assert.NotEmpty(t, doc.Hints)
}
