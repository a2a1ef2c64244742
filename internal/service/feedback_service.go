package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// FeedbackService handles exam feedback submission and moderation reads.
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(feedbackRepo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo}
}

// Submit records a student's feedback for an exam; always starts pending.
func (s *FeedbackService) Submit(ctx context.Context, examID uuid.UUID, userID int, body string) (*model.Feedback, error) {
	fb := &model.Feedback{
		ExamID: examID,
		UserID: userID,
		Body:   body,
		Status: model.FeedbackStatusPending,
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

// ListByExam returns feedback for one exam, newest first.
func (s *FeedbackService) ListByExam(ctx context.Context, examID uuid.UUID, limit int) ([]model.Feedback, error) {
	return s.feedbackRepo.ListByExam(ctx, examID, limit)
}

// Moderate sets the moderation status of a feedback record.
func (s *FeedbackService) Moderate(ctx context.Context, id uuid.UUID, status model.FeedbackStatus) error {
	return s.feedbackRepo.SetStatus(ctx, id, status)
}
