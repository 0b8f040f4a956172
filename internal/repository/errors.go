package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert would violate a uniqueness
// constraint, such as a second prediction for the same user and event or
// a second official result for the same event.
var ErrDuplicate = errors.New("record already exists")
