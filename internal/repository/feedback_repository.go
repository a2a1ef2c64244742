package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/examhall/examhall-backend/internal/model"
)

// FeedbackRepository handles exam feedback records. It is built on the
// generic Query layer rather than hand-written SQL.
type FeedbackRepository struct {
	q *Query
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(q *Query) *FeedbackRepository {
	return &FeedbackRepository{q: q}
}

const feedbackTable = "exam_feedback"

// Create inserts a feedback record and backfills database-assigned fields.
func (r *FeedbackRepository) Create(ctx context.Context, fb *model.Feedback) error {
	inserted, err := r.q.Insert(ctx, feedbackTable, map[string]any{
		"exam_id": fb.ExamID,
		"user_id": fb.UserID,
		"body":    fb.Body,
		"status":  string(fb.Status),
	})
	if err != nil {
		return err
	}
	decoded, err := decodeFeedback(inserted)
	if err != nil {
		return err
	}
	*fb = *decoded
	return nil
}

// ListByExam returns feedback for an exam, newest first.
func (r *FeedbackRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit int) ([]model.Feedback, error) {
	rows, err := r.q.Select(ctx, feedbackTable, nil,
		[]Filter{{Column: "exam_id", Value: examID}},
		"created_at", true, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.Feedback, 0, len(rows))
	for _, row := range rows {
		fb, err := decodeFeedback(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *fb)
	}
	return out, nil
}

// SetStatus moderates a feedback record.
func (r *FeedbackRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.FeedbackStatus) error {
	return r.q.Update(ctx, feedbackTable,
		map[string]any{"status": string(status)},
		[]Filter{{Column: "id", Value: id}})
}

func decodeFeedback(row map[string]any) (*model.Feedback, error) {
	fb := &model.Feedback{}

	switch v := row["id"].(type) {
	case [16]byte:
		fb.ID = uuid.UUID(v)
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("decode feedback id: %w", err)
		}
		fb.ID = id
	}
	switch v := row["exam_id"].(type) {
	case [16]byte:
		fb.ExamID = uuid.UUID(v)
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("decode feedback exam_id: %w", err)
		}
		fb.ExamID = id
	}

	switch v := row["user_id"].(type) {
	case int32:
		fb.UserID = int(v)
	case int64:
		fb.UserID = int(v)
	}
	if s, ok := row["body"].(string); ok {
		fb.Body = s
	}
	if s, ok := row["status"].(string); ok {
		fb.Status = model.FeedbackStatus(s)
	}
	if t, ok := row["created_at"].(time.Time); ok {
		fb.CreatedAt = t
	}
	return fb, nil
}
