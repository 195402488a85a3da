package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthorized is returned when the service key is rejected.
var ErrUnauthorized = errors.New("identity: service key rejected")

// Client talks to the managed auth service's admin API. Passwords never
// touch our own storage; the auth service owns credentials end to end.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
	}
}

type ensureUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// EnsureUser creates the auth user for an email, or resets its password if
// the user already exists. Returns the auth user id either way.
func (c *Client) EnsureUser(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(ensureUserRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("identity: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/admin/users", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: ensure user: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		return "", fmt.Errorf("identity: ensure user returned status %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("identity: decode response: %w", err)
	}
	if user.ID == "" {
		return "", errors.New("identity: response missing user id")
	}
	return user.ID, nil
}
