package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/apexline/gridlock/internal/handlers"
	"github.com/apexline/gridlock/internal/models"
	"github.com/apexline/gridlock/internal/testutil"
)

func TestHandleSubmitPrediction_Success(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	rec := setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
		UserID:   user.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers...),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var prediction models.Prediction
	decodeBody(t, rec, &prediction)
	if prediction.UserID != user.ID || prediction.EventID != event.ID {
		t.Errorf("prediction bound to %s/%s, want %s/%s", prediction.UserID, prediction.EventID, user.ID, event.ID)
	}
	if len(prediction.Ordering) != len(setup.drivers) {
		t.Errorf("ordering length = %d, want %d", len(prediction.Ordering), len(setup.drivers))
	}
	if prediction.RatingDelta != nil {
		t.Error("fresh prediction should not carry a rating delta")
	}
}

func TestHandleSubmitPrediction_Locked(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(-time.Minute))

	rec := setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
		UserID:   user.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers...),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "ALREADY_LOCKED" {
		t.Errorf("error code = %q, want ALREADY_LOCKED", code)
	}
}

func TestHandleSubmitPrediction_Twice(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	req := handlers.PredictionSubmitRequest{
		UserID:   user.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers...),
	}
	if rec := setup.do(t, http.MethodPost, "/api/predictions", req); rec.Code != http.StatusCreated {
		t.Fatalf("first submit failed: %d", rec.Code)
	}

	rec := setup.do(t, http.MethodPost, "/api/predictions", req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "ALREADY_SUBMITTED" {
		t.Errorf("error code = %q, want ALREADY_SUBMITTED", code)
	}
}

func TestHandleSubmitPrediction_InvalidOrdering(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	rec := setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
		UserID:   user.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers[:5]...),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_ORDERING" {
		t.Errorf("error code = %q, want INVALID_ORDERING", code)
	}
}

func TestHandleEditPrediction(t *testing.T) {
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
	var prediction models.Prediction
	decodeBody(t, rec, &prediction)

	// Swap the top two drivers
	swapped := append([]string{setup.drivers[1], setup.drivers[0]}, setup.drivers[2:]...)
	rec = setup.do(t, http.MethodPatch, "/api/predictions/"+prediction.ID, handlers.PredictionEditRequest{
		UserID:   user.ID,
		Ordering: testutil.Grid(swapped...),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Prediction
	decodeBody(t, rec, &updated)
	if updated.Ordering[0].DriverID != setup.drivers[1] {
		t.Errorf("leader = %s, want %s", updated.Ordering[0].DriverID, setup.drivers[1])
	}
}

func TestHandleEditPrediction_NotOwner(t *testing.T) {
	setup := newTestSetup(t)
	alice := testutil.CreateTestUser(t, setup.repo, "alice")
	bob := testutil.CreateTestUser(t, setup.repo, "bob")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	rec := setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
		UserID:   alice.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers...),
	})
	var prediction models.Prediction
	decodeBody(t, rec, &prediction)

	rec = setup.do(t, http.MethodPatch, "/api/predictions/"+prediction.ID, handlers.PredictionEditRequest{
		UserID:   bob.ID,
		Ordering: testutil.Grid(setup.drivers...),
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "NOT_OWNER" {
		t.Errorf("error code = %q, want NOT_OWNER", code)
	}
}

func TestHandleGetPrediction(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	event := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))

	setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
		UserID:   user.ID,
		EventID:  event.ID,
		Ordering: testutil.Grid(setup.drivers...),
	})

	rec := setup.do(t, http.MethodGet, "/api/events/"+event.ID+"/predictions/"+user.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var prediction models.Prediction
	decodeBody(t, rec, &prediction)
	if prediction.UserID != user.ID {
		t.Errorf("prediction user = %s, want %s", prediction.UserID, user.ID)
	}
}

func TestHandleListUserPredictions(t *testing.T) {
	setup := newTestSetup(t)
	user := testutil.CreateTestUser(t, setup.repo, "alice")
	first := testutil.CreateTestEvent(t, setup.repo, "Bahrain GP", setup.now.Add(time.Hour))
	second := testutil.CreateTestEvent(t, setup.repo, "Jeddah GP", setup.now.Add(2*time.Hour))

	for _, event := range []string{first.ID, second.ID} {
		rec := setup.do(t, http.MethodPost, "/api/predictions", handlers.PredictionSubmitRequest{
			UserID:   user.ID,
			EventID:  event,
			Ordering: testutil.Grid(setup.drivers...),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit for %s failed: %d", event, rec.Code)
		}
	}

	rec := setup.do(t, http.MethodGet, "/api/users/"+user.ID+"/predictions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var predictions []models.Prediction
	decodeBody(t, rec, &predictions)
	if len(predictions) != 2 {
		t.Errorf("got %d predictions, want 2", len(predictions))
	}
}
