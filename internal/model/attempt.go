package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates exam attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
)

// Attempt represents a user's timed run through an exam.
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	ExamID      uuid.UUID     `json:"exam_id"`
	UserID      int           `json:"user_id"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	Status      AttemptStatus `json:"status"`
	Score       *float64      `json:"score,omitempty"`
}

// ActiveAttempt is the resume-feed view of an in-progress attempt: the
// attempt joined with its exam's title and duration, plus the remaining
// seconds computed server-side.
type ActiveAttempt struct {
	Attempt
	ExamTitle        string `json:"exam_title"`
	DurationMinutes  int    `json:"duration_minutes"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}
