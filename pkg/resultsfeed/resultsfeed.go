// Package resultsfeed provides a client for pulling official race
// classifications from an external timing feed.
package resultsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/apexline/gridlock/internal/logger"
)

// ErrNotAvailable is returned when the feed has no classification yet
// for the requested event.
var ErrNotAvailable = errors.New("classification not available")

// Entry is one classified finisher
type Entry struct {
	Position int    `json:"position"`
	DriverID string `json:"driver_id"`
}

// Classification is the feed's published result for one event
type Classification struct {
	Season      int      `json:"season"`
	Round       int      `json:"round"`
	Final       []Entry  `json:"final"`
	Sprint      []Entry  `json:"sprint,omitempty"`
	FastestLap  string   `json:"fastest_lap,omitempty"`
	DNFs        []string `json:"dnfs,omitempty"`
	Provisional bool     `json:"provisional"`
}

// Client defines the interface for results feed operations
type Client interface {
	// FetchClassification retrieves the classification for one event
	FetchClassification(ctx context.Context, season, round int) (*Classification, error)
	// BaseURL returns the configured feed base URL
	BaseURL() string
	// SetBaseURL updates the feed base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for a results feed
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new results feed HTTP client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new feed client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured feed base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the feed base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// FetchClassification retrieves the classification for one event.
// A provisional classification is treated as not yet available.
func (c *HTTPClient) FetchClassification(ctx context.Context, season, round int) (*Classification, error) {
	endpoint, err := url.Parse(c.baseURL + "/api/classification")
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}
	q := endpoint.Query()
	q.Set("season", strconv.Itoa(season))
	q.Set("round", strconv.Itoa(round))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	c.log.Debug("fetching classification", "url", endpoint.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotAvailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var classification Classification
	if err := json.NewDecoder(resp.Body).Decode(&classification); err != nil {
		return nil, fmt.Errorf("failed to decode classification: %w", err)
	}

	if classification.Provisional {
		return nil, ErrNotAvailable
	}

	return &classification, nil
}
