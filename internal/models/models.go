package models

import "time"

// Event lifecycle states. "Locked" is never stored: an open event is
// implicitly locked once the clock passes its lock time.
const (
	EventStatusOpen    = "open"
	EventStatusSettled = "settled"
)

// Driver is a ranked participant in an event
type Driver struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Number       int    `json:"number"`
	Team         string `json:"team"`
	Active       bool   `json:"active"`
}

// Event is a scheduled race that predictions can be submitted against
type Event struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Circuit  string    `json:"circuit"`
	Country  string    `json:"country"`
	Season   int       `json:"season"`
	Round    int       `json:"round"`
	StartsAt time.Time `json:"starts_at"`
	LockAt   time.Time `json:"lock_at"`
	Status   string    `json:"status"`
}

// RankedDriver is one slot of an ordering: a driver at a finishing position
type RankedDriver struct {
	Position int    `json:"position"`
	DriverID string `json:"driver_id"`
}

// Prediction is one user's full-grid ordering for one event.
// RatingDelta, Score and Breakdown stay nil until the event settles,
// after which the record is immutable.
type Prediction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	EventID     string          `json:"event_id"`
	Ordering    []RankedDriver  `json:"ordering"`
	RatingDelta *int            `json:"rating_delta,omitempty"`
	Score       *int            `json:"score,omitempty"`
	Breakdown   *ScoreBreakdown `json:"breakdown,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ScoreBreakdown itemizes how a settled prediction was scored
type ScoreBreakdown struct {
	Accuracy       float64 `json:"accuracy"`
	Correlation    float64 `json:"correlation"`
	ExactPodium    bool    `json:"exact_podium"`
	CorrectWinner  bool    `json:"correct_winner"`
	TopFiveCorrect int     `json:"top_five_correct"`
	BasePoints     int     `json:"base_points"`
	WinnerBonus    int     `json:"winner_bonus"`
	PodiumBonus    int     `json:"podium_bonus"`
	TopFiveBonus   int     `json:"top_five_bonus"`
}

// OfficialResult is the authoritative ordering for an event, plus
// auxiliary facts the engine records but never scores
type OfficialResult struct {
	ID          string         `json:"id"`
	EventID     string         `json:"event_id"`
	Positions   []RankedDriver `json:"positions"`
	FastestLap  string         `json:"fastest_lap,omitempty"`
	DNFs        []string       `json:"dnfs,omitempty"`
	Sprint      []RankedDriver `json:"sprint,omitempty"`
	PublishedAt time.Time      `json:"published_at"`
}

// User carries the persistent rating state owned by settlement
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	FriendCode      string    `json:"friend_code"`
	Rating          int       `json:"rating"`
	TotalScore      int       `json:"total_score"`
	PredictionCount int       `json:"prediction_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// RatingChange is one user's outcome from a settlement
type RatingChange struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	OldRating   int    `json:"old_rating"`
	NewRating   int    `json:"new_rating"`
	RatingDelta int    `json:"rating_delta"`
	Score       int    `json:"score"`
}

// WSMessage is the envelope for websocket broadcasts
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
