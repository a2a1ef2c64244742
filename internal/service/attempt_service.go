package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// Attempt errors.
var (
	ErrExamNotPublished = errors.New("exam is not published")
	ErrAttemptNotActive = errors.New("no active attempt")
)

// AttemptService handles exam attempt lifecycle and the resume feed.
// The feed is polled by every logged-in student, so the joined attempt
// snapshot is cached in Redis; RemainingSeconds is always recomputed
// from the current time, never cached.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	examRepo    *repository.ExamRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(attemptRepo *repository.AttemptRepository, examRepo *repository.ExamRepository, rdb *redis.Client, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		examRepo:    examRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start begins (or resumes) an attempt for a published exam. Joining
// twice returns the existing attempt unchanged — the timer keeps
// running from the first start.
func (s *AttemptService) Start(ctx context.Context, examID uuid.UUID, userID int) (*model.Attempt, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}

	existing, err := s.attemptRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing attempt: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	attempt := &model.Attempt{ExamID: examID, UserID: userID}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent start; the other writer won.
			return s.attemptRepo.GetByExamAndUser(ctx, examID, userID)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.invalidateFeed(ctx, userID)
	return attempt, nil
}

// Submit finalizes the user's in-progress attempt for an exam.
func (s *AttemptService) Submit(ctx context.Context, examID uuid.UUID, userID int) error {
	attempt, err := s.attemptRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil {
		return ErrAttemptNotActive
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return ErrAttemptNotActive
	}
	if err := s.attemptRepo.Submit(ctx, attempt.ID); err != nil {
		return err
	}

	s.invalidateFeed(ctx, userID)
	return nil
}

// Active returns the user's most recent in-progress attempt with its
// remaining seconds, or nil when none exists. An attempt whose window
// has fully elapsed counts as absent: the resume surface must not offer
// a dead attempt.
func (s *AttemptService) Active(ctx context.Context, userID int, now time.Time) (*model.ActiveAttempt, error) {
	active, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}

	remaining := attemptRemaining(active.StartedAt, active.DurationMinutes, now)
	if remaining <= 0 {
		return nil, nil
	}
	active.RemainingSeconds = remaining
	return active, nil
}

// attemptRemaining computes how many seconds are left in an attempt's
// window. Zero or negative means the window has fully elapsed.
func attemptRemaining(startedAt time.Time, durationMinutes int, now time.Time) int64 {
	total := int64(durationMinutes) * 60
	elapsed := int64(now.Sub(startedAt).Seconds())
	return total - elapsed
}

// loadActive reads the attempt snapshot through the cache.
func (s *AttemptService) loadActive(ctx context.Context, userID int) (*model.ActiveAttempt, error) {
	key := config.CacheKey.ActiveAttemptKey(userID)

	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var active model.ActiveAttempt
		if err := json.Unmarshal([]byte(cached), &active); err == nil {
			return &active, nil
		}
		// Corrupted cache entry; fall through to the database.
		s.rdb.Del(ctx, key)
	}

	active, err := s.attemptRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active attempt: %w", err)
	}

	if payload, err := json.Marshal(active); err == nil {
		if err := s.rdb.Set(ctx, key, payload, config.ResumePollInterval).Err(); err != nil {
			s.log.Warn().Err(err).Int("user_id", userID).Msg("Attempt cache write failed")
		}
	}
	return active, nil
}

func (s *AttemptService) invalidateFeed(ctx context.Context, userID int) {
	key := config.CacheKey.ActiveAttemptKey(userID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Attempt cache invalidation failed")
	}
}
