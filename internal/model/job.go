package model

import "time"

// JobState is the lifecycle of an asynchronous extraction job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobComplete  JobState = "complete"
	JobError     JobState = "error"
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobComplete || s == JobError || s == JobCancelled
}

// JobStatus is the pollable view of a job. Only the owning worker mutates
// the underlying job; callers receive copies.
type JobStatus struct {
	ID             string            `json:"id"`
	State          JobState          `json:"state"`
	Request        ExtractionRequest `json:"request"`
	AttemptsDone   int               `json:"attempts_done"`
	AttemptsTotal  int               `json:"attempts_total"`
	CurrentAttempt string            `json:"current_attempt,omitempty"`
	Error          string            `json:"error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
