package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"

	"github.com/mkurbatov/jobhub/internal/models"
)

// VacancyIndex is the Elasticsearch-backed full-text search repository for
// vacancies.
type VacancyIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewVacancyIndex(es *elasticsearch.Client, index string) *VacancyIndex {
	return &VacancyIndex{ES: es, Index: index}
}

type Query struct {
	Query         string
	Area          string
	Employer      string
	Experience    string
	Employment    string
	Schedule      string
	HasTest       *bool
	IsArchived    *bool
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	SortBy        string
	SortOrder     string
	Page          int
	Size          int
}

// BulkAdd indexes or updates vacancies, keyed by the relational id so reruns
// overwrite rather than duplicate.
func (v *VacancyIndex) BulkAdd(ctx context.Context, vacancies []models.Vacancy) (int, error) {
	if len(vacancies) == 0 {
		return 0, nil
	}

	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: v.ES,
		Index:  v.Index,
	})
	if err != nil {
		return 0, fmt.Errorf("create bulk indexer: %w", err)
	}

	for _, vacancy := range vacancies {
		data, err := json.Marshal(vacancy)
		if err != nil {
			return 0, fmt.Errorf("marshal vacancy %d: %w", vacancy.ID, err)
		}
		err = indexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatUint(uint64(vacancy.ID), 10),
			Body:       bytes.NewReader(data),
		})
		if err != nil {
			return 0, fmt.Errorf("queue vacancy %d: %w", vacancy.ID, err)
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return 0, err
	}

	stats := indexer.Stats()
	if stats.NumFailed > 0 {
		return int(stats.NumFlushed), fmt.Errorf("bulk index: %d items failed", stats.NumFailed)
	}
	return int(stats.NumFlushed), nil
}

// Search runs a bool query assembled from the populated filters.
func (v *VacancyIndex) Search(ctx context.Context, q Query) (int64, []models.Vacancy, error) {
	must := make([]map[string]any, 0, 8)

	if q.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     q.Query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		})
	}
	if q.Area != "" {
		must = append(must, matchClause("area", q.Area))
	}
	if q.Employer != "" {
		must = append(must, matchClause("employer", q.Employer))
	}
	if q.Experience != "" {
		must = append(must, matchClause("experience", q.Experience))
	}
	if q.Employment != "" {
		must = append(must, matchClause("employment", q.Employment))
	}
	if q.Schedule != "" {
		must = append(must, matchClause("schedule", q.Schedule))
	}
	if q.HasTest != nil {
		must = append(must, map[string]any{"term": map[string]any{"has_test": *q.HasTest}})
	}
	if q.IsArchived != nil {
		must = append(must, map[string]any{"term": map[string]any{"is_archived": *q.IsArchived}})
	}
	if q.PublishedFrom != nil || q.PublishedTo != nil {
		rangeFilter := map[string]any{}
		if q.PublishedFrom != nil {
			rangeFilter["gte"] = q.PublishedFrom.Format(time.RFC3339)
		}
		if q.PublishedTo != nil {
			rangeFilter["lte"] = q.PublishedTo.Format(time.RFC3339)
		}
		must = append(must, map[string]any{"range": map[string]any{"published_at": rangeFilter}})
	}

	from, size := Paginate(q.Page, q.Size)
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"from": from,
		"size": size,
	}
	if q.SortBy != "" {
		order := q.SortOrder
		if order == "" {
			order = "desc"
		}
		body["sort"] = []map[string]any{{q.SortBy: map[string]any{"order": order}}}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := v.ES.Search(
		v.ES.Search.WithContext(ctx),
		v.ES.Search.WithIndex(v.Index),
		v.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Vacancy `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	vacancies := make([]models.Vacancy, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		vacancies[i] = hit.Source
	}
	return r.Hits.Total.Value, vacancies, nil
}

func matchClause(field, value string) map[string]any {
	return map[string]any{"match": map[string]any{field: value}}
}

func Paginate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size
}
