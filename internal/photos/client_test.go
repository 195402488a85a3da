package photos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pexelsStub(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("query") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page":          1,
			"per_page":      15,
			"total_results": 1,
			"photos": []map[string]any{{
				"id":           42,
				"photographer": "Giulia Rossi",
				"url":          "https://example.com/photo/42",
				"alt":          "calm office",
				"src":          map[string]string{"large": "https://example.com/photo/42/large.jpg"},
			}},
		})
	}))
}

func TestClientSearch(t *testing.T) {
	var requests int
	server := pexelsStub(t, &requests)
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	result, err := c.Search(context.Background(), "calm office", 1, 15)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if result.Total != 1 || len(result.Photos) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Photos[0].Src != "https://example.com/photo/42/large.jpg" {
		t.Fatalf("unexpected src: %q", result.Photos[0].Src)
	}
}

func TestClientSearchRejectsBlankQuery(t *testing.T) {
	c := NewClient("http://unused.invalid", "test-key")
	if _, err := c.Search(context.Background(), "  ", 1, 15); !errors.Is(err, ErrQueryRequired) {
		t.Fatalf("expected ErrQueryRequired, got %v", err)
	}
}

func TestClientSearchSurfacesUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	if _, err := c.Search(context.Background(), "office", 1, 15); err == nil {
		t.Fatalf("expected error for upstream 429")
	}
}
