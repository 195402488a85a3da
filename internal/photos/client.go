package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Photo is one stock photo result.
type Photo struct {
	ID           int64  `json:"id"`
	Photographer string `json:"photographer"`
	URL          string `json:"url"`
	Src          string `json:"src"`
	Alt          string `json:"alt"`
}

// SearchResult is one page of search results.
type SearchResult struct {
	Query   string  `json:"query"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Total   int     `json:"total"`
	Photos  []Photo `json:"photos"`
}

// ErrQueryRequired is returned for blank search queries.
var ErrQueryRequired = errors.New("photos: query is required")

// Client talks to the Pexels search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.pexels.com/v1"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type pexelsPhoto struct {
	ID           int64  `json:"id"`
	Photographer string `json:"photographer"`
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	Src          struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"src"`
}

type pexelsResponse struct {
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	TotalResults int           `json:"total_results"`
	Photos       []pexelsPhoto `json:"photos"`
}

// Search runs one search request against the API.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 80 {
		perPage = 15
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("photos: build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photos: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photos: search returned status %d", resp.StatusCode)
	}

	var body pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("photos: decode response: %w", err)
	}

	result := &SearchResult{
		Query:   query,
		Page:    body.Page,
		PerPage: body.PerPage,
		Total:   body.TotalResults,
		Photos:  make([]Photo, 0, len(body.Photos)),
	}
	for _, p := range body.Photos {
		src := p.Src.Large
		if src == "" {
			src = p.Src.Medium
		}
		result.Photos = append(result.Photos, Photo{
			ID:           p.ID,
			Photographer: p.Photographer,
			URL:          p.URL,
			Src:          src,
			Alt:          p.Alt,
		})
	}
	return result, nil
}
