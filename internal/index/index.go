package index

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"

	"github.com/mox-desktop/moxnotify/internal/model"
)

// Document is the indexed shape of one NewNotification. Hints are stored
// verbatim as JSON and not indexed, except the category which is
// searchable on its own field.
type Document struct {
	ID           uint64    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Summary      string    `json:"summary"`
	Body         string    `json:"body"`
	AppName      string    `json:"app_name"`
	AppIcon      string    `json:"app_icon"`
	Timeout      int64     `json:"timeout"`
	HintCategory string    `json:"hint_category"`
	Hints        string    `json:"hints"`
}

// FromNotification flattens a bus payload into its indexed document.
func FromNotification(n model.Notification) Document {
	hints, err := json.Marshal(n.Hints)
	if err != nil {
		hints = []byte("{}")
	}

	return Document{
		ID:           uint64(n.ID),
		Timestamp:    time.UnixMilli(n.Timestamp).UTC(),
		Summary:      n.Summary,
		Body:         n.Body,
		AppName:      n.AppName,
		AppIcon:      n.AppIcon,
		Timeout:      int64(n.Timeout),
		HintCategory: n.Hints.Category,
		Hints:        string(hints),
	}
}

// SearchRequest mirrors the searcher's HTTP payload after parsing.
type SearchRequest struct {
	Query     string
	MaxHits   int
	SortBy    string
	SortOrder string // "asc" or "desc"; desc is the default when SortBy is set
	Start     *time.Time
	End       *time.Time
}

// Index owns one bleve index. There is a single writer across indexer
// and janitor at any given time; the searcher opens read-only handles
// per process.
type Index struct {
	idx bleve.Index
}

// Open opens the index directory, creating it with the notification
// mapping when absent.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open index at %s: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

// OpenReadOnly opens an existing index without taking the writer lock,
// for the searcher to run alongside the indexer.
func OpenReadOnly(path string) (*Index, error) {
	idx, err := bleve.OpenUsing(path, map[string]interface{}{"read_only": true})
	if err != nil {
		return nil, fmt.Errorf("open index at %s read-only: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

// OpenMem builds an in-memory index with the same mapping, for tests.
func OpenMem() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("open in-memory index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func (x *Index) Close() error {
	return x.idx.Close()
}

// Add indexes one document under a fresh key. Redelivered records get a
// new key too, so duplicates survive; readers treat the id field as a
// hint, not a unique key.
func (x *Index) Add(doc Document) error {
	if err := x.idx.Index(uuid.NewString(), doc); err != nil {
		return fmt.Errorf("index document id=%d: %w", doc.ID, err)
	}
	return nil
}

// DocCount reports the number of live documents.
func (x *Index) DocCount() (uint64, error) {
	return x.idx.DocCount()
}

// Search runs the query over summary (boosted 2x), body, app_name and
// hint_category, optionally filtered to a timestamp window and sorted by
// a stored field; the default order is relevance. Each hit is the full
// stored document.
func (x *Index) Search(req SearchRequest) ([]map[string]interface{}, error) {
	q := buildTextQuery(req.Query)

	if req.Start != nil || req.End != nil {
		start, end := time.Time{}, time.Time{}
		if req.Start != nil {
			start = *req.Start
		}
		if req.End != nil {
			end = *req.End
		}
		inclusive := true
		rq := bleve.NewDateRangeInclusiveQuery(start, end, &inclusive, &inclusive)
		rq.SetField("timestamp")
		q = bleve.NewConjunctionQuery(q, rq)
	}

	limit := req.MaxHits
	if limit <= 0 {
		limit = 20
	}

	search := bleve.NewSearchRequestOptions(q, limit, 0, false)
	search.Fields = []string{"*"}
	if req.SortBy != "" {
		field := req.SortBy
		if req.SortOrder != "asc" {
			field = "-" + field
		}
		search.SortBy([]string{field})
	}

	res, err := x.idx.Search(search)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	docs := make([]map[string]interface{}, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docs = append(docs, hit.Fields)
	}
	return docs, nil
}

// DeleteOlderThan removes every document with timestamp at or before the
// cutoff, up to limit in one pass, and reports how many went.
func (x *Index) DeleteOlderThan(cutoff time.Time, limit int) (int, error) {
	inclusive := true
	rq := bleve.NewDateRangeInclusiveQuery(time.Time{}, cutoff, &inclusive, &inclusive)
	rq.SetField("timestamp")

	search := bleve.NewSearchRequestOptions(rq, limit, 0, false)
	search.Fields = []string{"id"}

	res, err := x.idx.Search(search)
	if err != nil {
		return 0, fmt.Errorf("search expired documents: %w", err)
	}
	if len(res.Hits) == 0 {
		return 0, nil
	}

	batch := x.idx.NewBatch()
	for _, hit := range res.Hits {
		batch.Delete(hit.ID)
	}
	if err := x.idx.Batch(batch); err != nil {
		return 0, fmt.Errorf("delete expired documents: %w", err)
	}

	return len(res.Hits), nil
}

func buildTextQuery(q string) query.Query {
	if q == "" || q == "*" {
		return bleve.NewMatchAllQuery()
	}

	summary := bleve.NewMatchQuery(q)
	summary.SetField("summary")
	summary.SetBoost(2.0)

	body := bleve.NewMatchQuery(q)
	body.SetField("body")

	appName := bleve.NewMatchQuery(q)
	appName.SetField("app_name")

	category := bleve.NewMatchQuery(q)
	category.SetField("hint_category")

	return bleve.NewDisjunctionQuery(summary, body, appName, category)
}

func buildMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()

	id := bleve.NewNumericFieldMapping()
	id.Store = true
	doc.AddFieldMappingsAt("id", id)

	ts := bleve.NewDateTimeFieldMapping()
	ts.Store = true
	doc.AddFieldMappingsAt("timestamp", ts)

	summary := bleve.NewTextFieldMapping()
	summary.Store = true
	doc.AddFieldMappingsAt("summary", summary)

	body := bleve.NewTextFieldMapping()
	body.Store = true
	doc.AddFieldMappingsAt("body", body)

	appName := bleve.NewKeywordFieldMapping()
	appName.Store = true
	doc.AddFieldMappingsAt("app_name", appName)

	appIcon := bleve.NewTextFieldMapping()
	appIcon.Store = true
	appIcon.Index = false
	doc.AddFieldMappingsAt("app_icon", appIcon)

	timeout := bleve.NewNumericFieldMapping()
	timeout.Store = true
	timeout.Index = false
	doc.AddFieldMappingsAt("timeout", timeout)

	category := bleve.NewTextFieldMapping()
	category.Store = true
	doc.AddFieldMappingsAt("hint_category", category)

	hints := bleve.NewTextFieldMapping()
	hints.Store = true
	hints.Index = false
	doc.AddFieldMappingsAt("hints", hints)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}
