package domain

import "errors"

var (
	// ErrAuth indicates the provider rejected the configured credentials.
	ErrAuth = errors.New("credentials rejected")
	// ErrSubmission indicates the provider rejected the prompt or was
	// unreachable at submit time.
	ErrSubmission = errors.New("submission failed")
	// ErrGeneration indicates the provider reported a failed job.
	ErrGeneration = errors.New("generation failed")
	// ErrTimeout indicates the polling budget was exhausted before the job
	// reached a terminal status.
	ErrTimeout = errors.New("generation timed out")
	// ErrBadResponse indicates the provider returned a payload the client
	// could not interpret.
	ErrBadResponse = errors.New("malformed provider response")
	// ErrBusy indicates the chat already has an unresolved generation job.
	ErrBusy = errors.New("generation already in progress")
)
