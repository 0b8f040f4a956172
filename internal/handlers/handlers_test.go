package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apexline/gridlock/internal/handlers"
	"github.com/apexline/gridlock/internal/logger"
	"github.com/apexline/gridlock/internal/rating"
	"github.com/apexline/gridlock/internal/repository"
	"github.com/apexline/gridlock/internal/services"
	"github.com/apexline/gridlock/internal/testutil"
	"github.com/apexline/gridlock/pkg/resultsfeed"
)

const testAdminKey = "test-admin-key"

type testSetup struct {
	repo    *repository.Repository
	router  chi.Router
	drivers []string
	now     time.Time
	feed    *resultsfeed.MockClient
}

func newTestSetup(t *testing.T, feedOpts ...resultsfeed.MockOption) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.New()
	feed := resultsfeed.NewMockClient(feedOpts...)

	setup := &testSetup{
		repo: repo,
		now:  time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
		feed: feed,
	}
	clock := func() time.Time { return setup.now }

	predictionService := services.NewPredictionService(log, repo, nil, rating.DefaultFieldSize)
	predictionService.SetClock(clock)
	settlementService := services.NewSettlementService(log, repo, nil, feed, rating.DefaultFieldSize)
	settlementService.SetClock(clock)
	eventService := services.NewEventService(log, repo)
	eventService.SetClock(clock)
	leaderboardService := services.NewLeaderboardService(log, repo)
	userService := services.NewUserService(log, repo)

	h := handlers.NewForTesting(predictionService, settlementService, eventService, leaderboardService, userService)

	setup.router = h.Router()
	setup.drivers = testutil.SeedDrivers(t, repo, rating.DefaultFieldSize)
	return setup
}

// advance moves the clock every service sees, e.g. past an event's lock
// time so it can be settled
func (s *testSetup) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// do runs a request through the router and returns the recorder
func (s *testSetup) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithHeader(t, method, path, body, "")
}

// doAdmin runs a request with the admin key set
func (s *testSetup) doAdmin(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithHeader(t, method, path, body, testAdminKey)
}

func (s *testSetup) doWithHeader(t *testing.T, method, path string, body interface{}, adminKey string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminKey != "" {
		req.Header.Set("X-Admin-Key", adminKey)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes a JSON response body into target
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// errorCode extracts the error code from an error response body
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	code, _ := body["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp handlers.HealthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}
