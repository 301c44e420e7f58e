package search

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/api/dto"
	"github.com/mox-desktop/moxnotify/internal/index"
)

// searchIndex is the slice of the index the handler needs.
type searchIndex interface {
	Search(req index.SearchRequest) ([]map[string]interface{}, error)
}

type Handler struct {
	index     searchIndex
	validator *validator.Validate
}

func New(index searchIndex, v *validator.Validate) *Handler {
	return &Handler{index: index, validator: v}
}

// Search runs a full-text query and replies with a bare JSON array of
// stored documents. Errors are plain text.
func (h *Handler) Search(c *ginext.Context) {
	var req dto.SearchRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to decode search request")
		c.String(http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate search request")
		c.String(http.StatusBadRequest, "validation error: %s", err.Error())
		return
	}

	query, err := toIndexRequest(req)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid timestamp: %s", err.Error())
		return
	}

	docs, err := h.index.Search(query)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("query", req.Query).Msg("search failed")
		c.String(http.StatusInternalServerError, "search failed")
		return
	}

	zlog.Logger.Debug().Str("query", req.Query).Int("hits", len(docs)).Msg("search served")
	c.JSON(http.StatusOK, docs)
}

func toIndexRequest(req dto.SearchRequest) (index.SearchRequest, error) {
	out := index.SearchRequest{
		Query:     req.Query,
		MaxHits:   req.MaxHits,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	if req.Start != "" {
		t, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			return index.SearchRequest{}, err
		}
		out.Start = &t
	}
	if req.End != "" {
		t, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			return index.SearchRequest{}, err
		}
		out.End = &t
	}

	return out, nil
}
