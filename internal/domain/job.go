package domain

import "time"

// JobStatus enumerates the generation states the bot observes by polling.
// Transitions are driven entirely by the external service.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further polling can change the status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// GenerationParams are the fixed parameters attached to every submission.
type GenerationParams struct {
	Width  int
	Height int
	Count  int
	Style  string
}

// DefaultParams returns the parameters used when the chat picked no style.
func DefaultParams() GenerationParams {
	return GenerationParams{Width: 1024, Height: 1024, Count: 1, Style: "DEFAULT"}
}

// GenerationJob tracks one prompt through the submit/poll workflow. A job
// lives from submission until a terminal status is observed or the poll
// budget runs out; it is never persisted.
type GenerationJob struct {
	RequestID string
	ChatID    int64
	Prompt    string
	Params    GenerationParams
	Status    JobStatus
	CreatedAt time.Time
}
