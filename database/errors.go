package database

import "errors"

// Sentinel errors surfaced to API callers. Repository methods wrap these so
// handlers can map them to response codes with errors.Is.
var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrUserNotFound = errors.New("user not found")
)
