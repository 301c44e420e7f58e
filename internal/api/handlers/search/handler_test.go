package search

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mox-desktop/moxnotify/internal/index"
	"github.com/mox-desktop/moxnotify/internal/model"
)

func setupHandler(t *testing.T) (*Handler, *index.Index) {
	t.Helper()

	idx, err := index.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return New(idx, validator.New()), idx
}

func addNotification(t *testing.T, idx *index.Index, id uint32, summary string, ts time.Time) {
	t.Helper()
	require.NoError(t, idx.Add(index.FromNotification(model.Notification{
		ID:        id,
		UUID:      "u",
		AppName:   "app",
		Summary:   summary,
		Timestamp: ts.UnixMilli(),
	})))
}

func doSearch(t *testing.T, h *Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Search(c)
	return w
}

func TestHandler_Search_ReturnsBareArray(t *testing.T) {
	h, idx := setupHandler(t)
	addNotification(t, idx, 1, "deploy failed", time.Now())

	body, _ := json.Marshal(map[string]any{"query": "deploy"})
	w := doSearch(t, h, body)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var hits []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "deploy failed", hits[0]["summary"])
}

func TestHandler_Search_EmptyResultIsEmptyArray(t *testing.T) {
	h, _ := setupHandler(t)

	body, _ := json.Marshal(map[string]any{"query": "nothing"})
	w := doSearch(t, h, body)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "[]", string(bytes.TrimSpace(w.Body.Bytes())))
}

func TestHandler_Search_MalformedBody(t *testing.T) {
	h, _ := setupHandler(t)

	w := doSearch(t, h, []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Search_RejectsBadSortField(t *testing.T) {
	h, _ := setupHandler(t)

	body, _ := json.Marshal(map[string]any{"query": "x", "sort_by": "uuid; drop table"})
	w := doSearch(t, h, body)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Search_RejectsBadTimestamp(t *testing.T) {
	h, _ := setupHandler(t)

	body, _ := json.Marshal(map[string]any{"query": "x", "start_timestamp": "yesterday"})
	w := doSearch(t, h, body)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Search_TimestampWindow(t *testing.T) {
	h, idx := setupHandler(t)

	now := time.Now().UTC()
	addNotification(t, idx, 1, "old event", now.Add(-48*time.Hour))
	addNotification(t, idx, 2, "new event", now)

	body, _ := json.Marshal(map[string]any{
		"query":           "event",
		"start_timestamp": now.Add(-time.Hour).Format(time.RFC3339),
	})
	w := doSearch(t, h, body)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var hits []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, float64(2), hits[0]["id"])
}
