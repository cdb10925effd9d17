package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Workflow errors
	ErrWorkflowNotFound    = errors.New("workflow not found")
	ErrWorkflowUnavailable = errors.New("workflow has no steps")

	// Approval errors
	ErrAssignmentNotFound     = errors.New("post has no approval assignment")
	ErrInvalidDecision        = errors.New("invalid approval decision")
	ErrAssignmentFinalized    = errors.New("approval assignment already finalized")
	ErrNotAwaitingResubmit    = errors.New("assignment is not awaiting changes")
	ErrConcurrentModification = errors.New("assignment was modified concurrently")

	// Revision errors
	ErrRevisionNotFound = errors.New("revision not found")

	// Post errors
	ErrPostNotFound = errors.New("post not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
