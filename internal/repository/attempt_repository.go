package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examhall/examhall-backend/internal/model"
)

// AttemptRepository handles exam attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new in-progress attempt. Returns pgx.ErrNoRows when
// a concurrent creator already inserted one for this exam/user pair.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (exam_id, user_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, user_id) DO NOTHING
		 RETURNING id, started_at`,
		a.ExamID, a.UserID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.StartedAt)
	if err != nil {
		return err
	}
	a.Status = model.AttemptStatusInProgress
	return nil
}

// GetByExamAndUser retrieves the attempt for one exam/user pair.
func (r *AttemptRepository) GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, started_at, submitted_at, status, score
		 FROM exam_attempts
		 WHERE exam_id = $1 AND user_id = $2`, examID, userID,
	).Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.SubmittedAt, &a.Status, &a.Score)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindActiveByUser retrieves the user's most recent in-progress attempt
// joined with its exam's title and duration. Returns pgx.ErrNoRows when
// none exists.
func (r *AttemptRepository) FindActiveByUser(ctx context.Context, userID int) (*model.ActiveAttempt, error) {
	a := &model.ActiveAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.exam_id, a.user_id, a.started_at, a.submitted_at, a.status, a.score,
		        e.title, e.duration_minutes
		 FROM exam_attempts a
		 JOIN exams e ON a.exam_id = e.id
		 WHERE a.user_id = $1 AND a.status = $2
		 ORDER BY a.started_at DESC
		 LIMIT 1`, userID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.SubmittedAt, &a.Status, &a.Score,
		&a.ExamTitle, &a.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Submit marks an attempt as submitted.
func (r *AttemptRepository) Submit(ctx context.Context, attemptID uuid.UUID) error {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET status = $1, submitted_at = $2
		 WHERE id = $3`,
		model.AttemptStatusSubmitted, now, attemptID)
	return err
}
