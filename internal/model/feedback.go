package model

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackStatus enumerates moderation states for exam feedback.
type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusApproved FeedbackStatus = "approved"
	FeedbackStatusRejected FeedbackStatus = "rejected"
)

// Feedback is a student's free-form comment on an exam.
type Feedback struct {
	ID        uuid.UUID      `json:"id"`
	ExamID    uuid.UUID      `json:"exam_id"`
	UserID    int            `json:"user_id"`
	Body      string         `json:"body"`
	Status    FeedbackStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateFeedbackRequest is the payload for submitting exam feedback.
type CreateFeedbackRequest struct {
	Body string `json:"body" binding:"required,min=3,max=2000"`
}
