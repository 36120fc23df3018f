package model

import "time"

// DeadLetterTask is a task that exhausted its retries and was parked on the dead-letter list.
type DeadLetterTask struct {
	Task     Task      `json:"task"`
	Error    string    `json:"error"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}

// Task types understood by the worker.
const (
	TaskSync     = "sync"
	TaskAnalysis = "analysis"
)

// Task is a unit of background work queued for a user.
type Task struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"userId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
