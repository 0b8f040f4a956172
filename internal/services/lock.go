package services

import (
	"time"

	"github.com/apexline/gridlock/internal/models"
)

// IsLocked reports whether an event accepts predictions at the given
// instant. Lock state is never stored: an open event locks the moment
// the clock reaches its lock time, and any non-open status is locked
// regardless of the clock.
func IsLocked(now time.Time, event *models.Event) bool {
	if event.Status != models.EventStatusOpen {
		return true
	}
	return !now.Before(event.LockAt)
}

// LocksIn returns the remaining time until an event locks, or zero if it
// is already locked. Used for countdown broadcasts.
func LocksIn(now time.Time, event *models.Event) time.Duration {
	if IsLocked(now, event) {
		return 0
	}
	return event.LockAt.Sub(now)
}
