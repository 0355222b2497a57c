package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// DefaultEndpoint serves the most popular movies list.
const DefaultEndpoint = "https://tv-api.com/en/API/MostPopularMovies"

const maxImageBytes = 10 << 20

type mostPopularResponse struct {
	ErrorMessage string        `json:"errorMessage"`
	Items        []model.Movie `json:"items"`
}

// Client talks to the movie API and fetches posters.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient builds a client. rps <= 0 disables throttling.
func NewClient(endpoint, apiKey string, timeout time.Duration, rps float64) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Load fetches the catalog.
func (c *Client) Load(ctx context.Context) ([]model.Movie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	resp, err := c.get(ctx, c.endpoint+"/"+c.apiKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected catalog status: %s", resp.Status)
	}

	var payload mostPopularResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("catalog error: %s", payload.ErrorMessage)
	}
	for i := range payload.Items {
		payload.Items[i].ImageURL = ResizedImageURL(payload.Items[i].ImageURL)
	}
	return payload.Items, nil
}

// Fetch downloads a poster.
func (c *Client) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected image status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", stripURL(err))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, stripURL(err))
	}
	return resp, nil
}

// stripURL drops the request URL from err. Catalog URLs carry the API key.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// ResizedImageURL swaps the size suffix of a poster URL for a 600px variant.
func ResizedImageURL(raw string) string {
	idx := strings.LastIndex(raw, "._")
	if idx < 0 {
		return raw
	}
	return raw[:idx] + "._V1_UX600_.jpg"
}
