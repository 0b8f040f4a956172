package resultsfeed

import "context"

// MockClient is a mock results feed client for testing
type MockClient struct {
	classifications map[[2]int]*Classification
	fetchErr        error
	baseURL         string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithClassification sets the classification to return for one event
func WithClassification(c *Classification) MockOption {
	return func(m *MockClient) {
		m.classifications[[2]int{c.Season, c.Round}] = c
	}
}

// WithFetchError sets an error to return from FetchClassification
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// NewMockClient creates a new mock feed client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		classifications: make(map[[2]int]*Classification),
		baseURL:         "http://feed.test",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchClassification returns the configured classification or error
func (m *MockClient) FetchClassification(ctx context.Context, season, round int) (*Classification, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	c, ok := m.classifications[[2]int{season, round}]
	if !ok {
		return nil, ErrNotAvailable
	}
	return c, nil
}

// BaseURL returns the configured feed base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetBaseURL updates the feed base URL
func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
