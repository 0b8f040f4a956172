package services

// Service errors
var (
	ErrEventNotFound      = &ServiceError{Message: "event not found"}
	ErrUserNotFound       = &ServiceError{Message: "user not found"}
	ErrPredictionNotFound = &ServiceError{Message: "prediction not found"}
	ErrDriverNotFound     = &ServiceError{Message: "unknown driver in ordering"}
	ErrEventLocked        = &ServiceError{Message: "event is locked"}
	ErrEventNotLocked     = &ServiceError{Message: "event has not locked yet"}
	ErrAlreadySubmitted   = &ServiceError{Message: "prediction already submitted for this event"}
	ErrAlreadySettled     = &ServiceError{Message: "event is already settled"}
	ErrNotOwner           = &ServiceError{Message: "prediction belongs to another user"}
	ErrInvalidOrdering    = &ServiceError{Message: "ordering must rank every driver exactly once"}
	ErrInvalidResult      = &ServiceError{Message: "official result must rank every driver exactly once"}
	ErrUsernameTaken      = &ServiceError{Message: "username is already taken"}
	ErrInvalidUsername    = &ServiceError{Message: "username must be 3-24 characters"}
	ErrNoResultAvailable  = &ServiceError{Message: "no result available for this event"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
