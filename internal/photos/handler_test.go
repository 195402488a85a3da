package photos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	result *SearchResult
	err    error

	gotQuery   string
	gotPage    int
	gotPerPage int
}

func (s *stubSearcher) Search(ctx context.Context, query string, page, perPage int) (*SearchResult, error) {
	s.gotQuery = query
	s.gotPage = page
	s.gotPerPage = perPage
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestHandlerSearch(t *testing.T) {
	searcher := &stubSearcher{result: &SearchResult{
		Query:   "calm office",
		Page:    2,
		PerPage: 5,
		Total:   42,
		Photos:  []Photo{{ID: 7, Photographer: "Ada", Alt: "calm office"}},
	}}
	handler := NewHandler(searcher, nil)

	req := httptest.NewRequest(http.MethodGet, "/photos/search?query=calm+office&page=2&per_page=5", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "calm office", searcher.gotQuery)
	assert.Equal(t, 2, searcher.gotPage)
	assert.Equal(t, 5, searcher.gotPerPage)

	var result SearchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 42, result.Total)
	require.Len(t, result.Photos, 1)
	assert.Equal(t, int64(7), result.Photos[0].ID)
}

func TestHandlerSearchMissingQuery(t *testing.T) {
	searcher := &stubSearcher{err: ErrQueryRequired}
	handler := NewHandler(searcher, nil)

	req := httptest.NewRequest(http.MethodGet, "/photos/search", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSearchUpstreamFailure(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("pexels: status 500")}
	handler := NewHandler(searcher, nil)

	req := httptest.NewRequest(http.MethodGet, "/photos/search?query=desk", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
