package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/jobhub/internal/hh"
	"github.com/mkurbatov/jobhub/internal/models"
)

type fakeStore struct {
	got []models.Vacancy
	err error
}

func (f *fakeStore) BulkUpsert(_ context.Context, vacancies []models.Vacancy) (int, error) {
	f.got = vacancies
	return len(vacancies), f.err
}

type fakeIndexer struct {
	got []models.Vacancy
	err error
}

func (f *fakeIndexer) BulkAdd(_ context.Context, vacancies []models.Vacancy) (int, error) {
	f.got = vacancies
	return len(vacancies), f.err
}

func newHHServer(t *testing.T, items []hh.Vacancy) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := hh.Page{Items: items, Found: len(items), Pages: 1, PerPage: 100}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
}

func TestCollector_Collect(t *testing.T) {
	srv := newHHServer(t, []hh.Vacancy{
		{ID: "1", Name: "Go developer", PublishedAt: "2026-08-01T10:00:00+0300"},
		{ID: "2", Name: "Backend engineer", PublishedAt: "2026-08-02T10:00:00+0300"},
	})
	defer srv.Close()

	store := &fakeStore{}
	indexer := &fakeIndexer{}
	collector := NewCollector(hh.NewClient(srv.URL, ""), store, indexer, nil)

	stats, err := collector.Collect(context.Background(), hh.SearchParams{Text: "golang"})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Fetched)
	require.Equal(t, 2, stats.Stored)
	require.Equal(t, 2, stats.Indexed)

	require.Len(t, store.got, 2)
	require.Len(t, indexer.got, 2)
	require.Equal(t, int64(1), store.got[0].SourceID)
	require.Equal(t, hh.SourceName, store.got[0].SourceName)
}

func TestCollector_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &fakeStore{}
	collector := NewCollector(hh.NewClient(srv.URL, ""), store, &fakeIndexer{}, nil)

	_, err := collector.Collect(context.Background(), hh.SearchParams{})
	require.Error(t, err)
	require.Nil(t, store.got)
}

func TestCollector_StoreFailure(t *testing.T) {
	srv := newHHServer(t, []hh.Vacancy{{ID: "1", Name: "x"}})
	defer srv.Close()

	store := &fakeStore{err: errors.New("db down")}
	indexer := &fakeIndexer{}
	collector := NewCollector(hh.NewClient(srv.URL, ""), store, indexer, nil)

	_, err := collector.Collect(context.Background(), hh.SearchParams{})
	require.Error(t, err)
	// nothing reaches the index when the store write fails
	require.Nil(t, indexer.got)
}
