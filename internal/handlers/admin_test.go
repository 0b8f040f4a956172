package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/apexline/gridlock/internal/handlers"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/services"
	"github.com/apexline/gridlock/internal/testutil"
	"github.com/apexline/gridlock/pkg/resultsfeed"
)

func TestAdminRoutes_RequireKey(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/events", handlers.EventCreateRequest{Name: "Monza GP"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without key, got %d", rec.Code)
	}

	rec = setup.doWithHeader(t, http.MethodPost, "/api/admin/events", handlers.EventCreateRequest{Name: "Monza GP"}, "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with wrong key, got %d", rec.Code)
	}
}

func TestHandleCreateEvent(t *testing.T) {
	setup := newTestSetup(t)

	starts := setup.now.Add(48 * time.Hour)
	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events", handlers.EventCreateRequest{
		Name:     "Monza GP",
		Circuit:  "Autodromo Nazionale Monza",
		Country:  "Italy",
		Season:   2026,
		Round:    16,
		StartsAt: starts,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var event models.Event
	decodeBody(t, rec, &event)
	if event.Status != models.EventStatusOpen {
		t.Errorf("status = %q, want open", event.Status)
	}
	if !event.LockAt.Equal(starts) {
		t.Errorf("lock time = %v, want start time %v", event.LockAt, starts)
	}
}

func TestHandleCreateEvent_MissingName(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events", handlers.EventCreateRequest{
		StartsAt: setup.now.Add(time.Hour),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleSubmitResult(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	rec := setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
		UserID:   user.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers...),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	setup.advance(2 * time.Hour)
	rec = setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/result", handlers.ResultSubmitRequest{
		Positions:  testutil.Grid(setup.drivers...),
		FastestLap: setup.drivers[0],
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var outcome services.SettlementOutcome
	decodeBody(t, rec, &outcome)
	if outcome.Event.Status != models.EventStatusSettled {
		t.Errorf("event status = %q, want settled", outcome.Event.Status)
	}
	if len(outcome.Changes) != 1 {
		t.Fatalf("got %d rating changes, want 1", len(outcome.Changes))
	}
	if outcome.Changes[0].Score != 100 {
		t.Errorf("score = %d, want 100 for a perfect prediction", outcome.Changes[0].Score)
	}

	// The result is now readable on the public endpoint
	rec = setup.do(t, http.MethodGet, "/api/events/"+event.ID+"/result", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for result, got %d", rec.Code)
	}
}

func TestHandleSubmitResult_NotLocked(t *testing.T) {
	setup := newTestSetup(t)
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/result", handlers.ResultSubmitRequest{
		Positions: testutil.Grid(setup.drivers...),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "EVENT_NOT_LOCKED" {
		t.Errorf("error code = %q, want EVENT_NOT_LOCKED", code)
	}
}

func TestHandleSubmitResult_Twice(t *testing.T) {
	setup := newTestSetup(t)
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(-time.Hour))

	req := handlers.ResultSubmitRequest{Positions: testutil.Grid(setup.drivers...)}
	if rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/result", req); rec.Code != http.StatusOK {
		t.Fatalf("first settlement failed: %d", rec.Code)
	}

	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/result", req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "ALREADY_SETTLED" {
		t.Errorf("error code = %q, want ALREADY_SETTLED", code)
	}
}

func TestHandleSubmitResult_InvalidPositions(t *testing.T) {
	setup := newTestSetup(t)
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(-time.Hour))

	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/result", handlers.ResultSubmitRequest{
		Positions: testutil.Grid(setup.drivers[:3]...),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_RESULT" {
		t.Errorf("error code = %q, want INVALID_RESULT", code)
	}
}

func TestHandleFetchResult(t *testing.T) {
	entries := make([]resultsfeed.Entry, 20)
	for i := range entries {
		entries[i] = resultsfeed.Entry{Position: i + 1, DriverID: seededDriverID(i)}
	}

	setup := newTestSetup(t, resultsfeed.WithClassification(&resultsfeed.Classification{
		Season: 2026,
		Round:  1,
		Final:  entries,
	}))
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(-time.Hour))

	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/fetch-result", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var outcome services.SettlementOutcome
	decodeBody(t, rec, &outcome)
	if outcome.Event.Status != models.EventStatusSettled {
		t.Errorf("event status = %q, want settled", outcome.Event.Status)
	}
}

func TestHandleFetchResult_NotAvailable(t *testing.T) {
	setup := newTestSetup(t)
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(-time.Hour))

	rec := setup.doAdmin(t, http.MethodPost, "/api/admin/events/"+event.ID+"/fetch-result", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "NO_RESULT" {
		t.Errorf("error code = %q, want NO_RESULT", code)
	}
}

func TestHandleUpsertDriver(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.doAdmin(t, http.MethodPut, "/api/admin/drivers/d99", handlers.DriverUpsertRequest{
		Name:         "Rookie Racer",
		Abbreviation: "ROO",
		Number:       99,
		Team:         "Backmarkers",
		Active:       true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var drivers []models.Driver
	decodeBody(t, setup.do(t, http.MethodGet, "/api/drivers", nil), &drivers)
	found := false
	for _, d := range drivers {
		if d.ID == "d99" && d.Name == "Rookie Racer" {
			found = true
		}
	}
	if !found {
		t.Error("upserted driver missing from roster")
	}
}

// seededDriverID returns the id SeedDrivers assigns to index i
func seededDriverID(i int) string {
	return fmt.Sprintf("d%02d", i+1)
}
