package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mkurbatov/jobhub/internal/events"
	"github.com/mkurbatov/jobhub/internal/hh"
	"github.com/mkurbatov/jobhub/internal/logging"
	"github.com/mkurbatov/jobhub/internal/models"
)

// VacancyStore is the relational side of a collection run.
type VacancyStore interface {
	BulkUpsert(ctx context.Context, vacancies []models.Vacancy) (int, error)
}

// VacancyIndexer is the search side of a collection run.
type VacancyIndexer interface {
	BulkAdd(ctx context.Context, vacancies []models.Vacancy) (int, error)
}

// Collector pulls vacancies from the external job board and fans them into
// the database and the search index.
type Collector struct {
	Client    *hh.Client
	Vacancies VacancyStore
	Index     VacancyIndexer
	Producer  *events.Producer
}

func NewCollector(client *hh.Client, vacancies VacancyStore, index VacancyIndexer, producer *events.Producer) *Collector {
	return &Collector{Client: client, Vacancies: vacancies, Index: index, Producer: producer}
}

type CollectStats struct {
	Fetched int `json:"fetched"`
	Stored  int `json:"stored"`
	Indexed int `json:"indexed"`
}

func (s *Collector) Collect(ctx context.Context, params hh.SearchParams) (*CollectStats, error) {
	l := logging.FromContext(ctx).With("svc", "vacancy_collector", "text", params.Text)

	vacancies, err := s.Client.GetAllVacancies(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch vacancies: %w", err)
	}

	stored, err := s.Vacancies.BulkUpsert(ctx, vacancies)
	if err != nil {
		return nil, fmt.Errorf("store vacancies: %w", err)
	}

	indexed, err := s.Index.BulkAdd(ctx, vacancies)
	if err != nil {
		return nil, fmt.Errorf("index vacancies: %w", err)
	}

	stats := &CollectStats{Fetched: len(vacancies), Stored: stored, Indexed: indexed}
	l.Info("collection finished", "fetched", stats.Fetched, "stored", stats.Stored, "indexed", stats.Indexed)

	if s.Producer != nil {
		event := map[string]any{
			"type":    "vacancies_collected",
			"fetched": stats.Fetched,
			"stored":  stats.Stored,
			"indexed": stats.Indexed,
		}
		if err := s.Producer.PublishEvent(ctx, events.TopicVacancyEvents, hh.SourceName, event); err != nil {
			l.Error("kafka publish error", "error", err)
		}
	}

	return stats, nil
}

// Run collects on a fixed interval until the context is cancelled.
func (s *Collector) Run(ctx context.Context, interval time.Duration, params hh.SearchParams) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Collect(ctx, params); err != nil {
				logging.FromContext(ctx).Error("scheduled collection failed", "error", err)
			}
		}
	}
}
