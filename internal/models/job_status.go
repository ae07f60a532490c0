package models

/*
Job status constants for use throughout the codebase.
Centralizing these avoids magic strings and improves maintainability.
*/

const (
	JobStatusEnqueued  = "enqueued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
