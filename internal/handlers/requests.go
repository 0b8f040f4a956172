package handlers

import (
	"time"

	"github.com/apexline/gridlock/internal/models"
)

// UserRegisterRequest represents a request to register a user
type UserRegisterRequest struct {
	Username string `json:"username"`
}

// EventCreateRequest represents a request to add an event to the calendar
type EventCreateRequest struct {
	Name     string    `json:"name"`
	Circuit  string    `json:"circuit"`
	Country  string    `json:"country"`
	Season   int       `json:"season"`
	Round    int       `json:"round"`
	StartsAt time.Time `json:"starts_at"`
	LockAt   time.Time `json:"lock_at"`
}

// PredictionSubmitRequest represents a request to submit a prediction
type PredictionSubmitRequest struct {
	UserID   string                `json:"user_id"`
	EventID  string                `json:"event_id"`
	Ordering []models.RankedDriver `json:"ordering"`
}

// PredictionEditRequest represents a request to replace a prediction's ordering
type PredictionEditRequest struct {
	UserID   string                `json:"user_id"`
	Ordering []models.RankedDriver `json:"ordering"`
}

// ResultSubmitRequest represents a request to settle an event with an
// official result
type ResultSubmitRequest struct {
	Positions  []models.RankedDriver `json:"positions"`
	FastestLap string                `json:"fastest_lap,omitempty"`
	DNFs       []string              `json:"dnfs,omitempty"`
	Sprint     []models.RankedDriver `json:"sprint,omitempty"`
}

// DriverUpsertRequest represents a request to add or update a roster driver
type DriverUpsertRequest struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Number       int    `json:"number"`
	Team         string `json:"team"`
	Active       bool   `json:"active"`
}
