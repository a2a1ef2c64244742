package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// ErrExamNotDraft is returned when publishing a non-draft exam.
var ErrExamNotDraft = errors.New("exam is not in draft status")

// ExamService handles admin exam management.
type ExamService struct {
	examRepo *repository.ExamRepository
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository) *ExamService {
	return &ExamService{examRepo: examRepo}
}

// Create inserts a new draft exam owned by the given admin.
func (s *ExamService) Create(ctx context.Context, authorID int, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Title:           req.Title,
		AuthorID:        authorID,
		DurationMinutes: req.DurationMinutes,
		Status:          model.ExamStatusDraft,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

// GetByID returns one exam.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// List returns all exams, newest first.
func (s *ExamService) List(ctx context.Context) ([]model.Exam, error) {
	return s.examRepo.List(ctx)
}

// Publish transitions a draft exam to published.
func (s *ExamService) Publish(ctx context.Context, id uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get exam: %w", err)
	}
	if exam.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	return s.examRepo.UpdateStatus(ctx, id, model.ExamStatusPublished)
}
