// Package services – QueueService
//
// This file implements the QueueService (the queue selector): the official's
// view of one office queue and the call-next operation. The selector never
// mutates tokens itself; it reads, picks the next id, and delegates the
// actual transition to the TokenService, whose conditional update is the
// only thing that decides races between concurrent officials.
package services

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
	"github.com/janseva/go-queue-backend/internal/repo"
)

// QueueService computes queue views and selects the next token to serve,
// scoped to the acting official's office (and optional department).
type QueueService struct {
	DB        *gorm.DB
	Tokens    *TokenService
	Estimator *EstimateService
}

// NewQueueService constructs a QueueService sharing the token service's DB.
func NewQueueService(tokens *TokenService, est *EstimateService) *QueueService {
	return &QueueService{DB: tokens.DB, Tokens: tokens, Estimator: est}
}

// scope extracts the officials's bound queue scope.
func (s *QueueService) scope(actor domain.Actor) (officeID, departmentID string, err error) {
	if !actor.IsOfficial() || actor.OfficeID == "" {
		return "", "", ErrNotPermitted
	}
	return actor.OfficeID, actor.DepartmentID, nil
}

// ListWaiting returns the waiting pool in scope, ordered by entry into
// waiting, with positions and per-position wait estimates recomputed fresh
// for this call.
func (s *QueueService) ListWaiting(ctx context.Context, actor domain.Actor) ([]domain.Token, error) {
	officeID, departmentID, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	list, err := repo.ListWaiting(ctx, s.DB, officeID, departmentID)
	if err != nil {
		return nil, err
	}

	var avg float64
	if s.Estimator != nil {
		avg, _, _ = s.Estimator.averageServiceMinutes(ctx, officeID)
	}
	for i := range list {
		pos := i + 1
		list[i].PositionInQueue = &pos
		if avg > 0 {
			m := int(math.Round(avg * float64(pos)))
			list[i].EstimatedWaitMinutes = &m
		}
	}
	return list, nil
}

// CurrentlyServing returns the at-most-one serving token in scope, or nil
// when the counter is idle.
func (s *QueueService) CurrentlyServing(ctx context.Context, actor domain.Actor) (*domain.Token, error) {
	officeID, departmentID, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	return repo.CurrentlyServing(ctx, s.DB, officeID, departmentID)
}

// ListSkipped returns the skipped tokens in scope for the recall panel,
// oldest skip first.
func (s *QueueService) ListSkipped(ctx context.Context, actor domain.Actor) ([]domain.Token, error) {
	officeID, departmentID, err := s.scope(actor)
	if err != nil {
		return nil, err
	}
	return repo.ListSkipped(ctx, s.DB, officeID, departmentID)
}

// CallNext promotes the head of the waiting pool to serving.
//
// It refuses with ErrCounterBusy while a token in scope is already serving
// (the official must complete or skip first), returns (nil, nil) when the
// pool is empty, and retries selection exactly once when the conditional
// update loses a race with another official. The re-read before the retry is
// what keeps two concurrent call-next calls from both succeeding.
func (s *QueueService) CallNext(ctx context.Context, actor domain.Actor) (*domain.Token, error) {
	officeID, departmentID, err := s.scope(actor)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		cur, err := repo.CurrentlyServing(ctx, s.DB, officeID, departmentID)
		if err != nil {
			return nil, err
		}
		if cur != nil {
			return nil, ErrCounterBusy
		}

		list, err := repo.ListWaiting(ctx, s.DB, officeID, departmentID)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, nil
		}

		tok, err := s.Tokens.Transition(ctx, actor, list[0].ID, domain.StatusWaiting, domain.StatusServing)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, ErrStaleStatus) {
			return nil, err
		}
		// Lost the race for the head; loop once with a fresh view.
	}
	return nil, ErrStaleStatus
}

// Skip marks the serving token as a no-show. It stays recallable.
func (s *QueueService) Skip(ctx context.Context, actor domain.Actor, tokenID string) (*domain.Token, error) {
	return s.Tokens.Transition(ctx, actor, tokenID, domain.StatusServing, domain.StatusSkipped)
}

// Complete finishes service for the serving token.
func (s *QueueService) Complete(ctx context.Context, actor domain.Actor, tokenID string) (*domain.Token, error) {
	return s.Tokens.Transition(ctx, actor, tokenID, domain.StatusServing, domain.StatusCompleted)
}

// Recall returns a skipped token to the waiting pool. The fresh
// waiting_since stamp appends it at the tail: recalled tokens lose their
// prior queue priority.
func (s *QueueService) Recall(ctx context.Context, actor domain.Actor, tokenID string) (*domain.Token, error) {
	return s.Tokens.Transition(ctx, actor, tokenID, domain.StatusSkipped, domain.StatusWaiting)
}

// Summary is the official dashboard aggregate for one office.
type Summary struct {
	Waiting           int64   `json:"waiting"`
	Serving           int64   `json:"serving"`
	CompletedToday    int64   `json:"completed_today"`
	SkippedToday      int64   `json:"skipped_today"`
	AvgServiceMinutes float64 `json:"avg_service_minutes"`
}

// Summarize computes the analytics summary for the actor's office.
func (s *QueueService) Summarize(ctx context.Context, actor domain.Actor) (*Summary, error) {
	officeID, departmentID, err := s.scope(actor)
	if err != nil {
		return nil, err
	}

	waiting, err := repo.ListWaiting(ctx, s.DB, officeID, departmentID)
	if err != nil {
		return nil, err
	}
	out := &Summary{Waiting: int64(len(waiting))}

	if cur, err := repo.CurrentlyServing(ctx, s.DB, officeID, departmentID); err != nil {
		return nil, err
	} else if cur != nil {
		out.Serving = 1
	}

	midnight := startOfToday()
	if out.CompletedToday, err = repo.CountStatusSince(ctx, s.DB, officeID, domain.StatusCompleted, midnight); err != nil {
		return nil, err
	}
	if out.SkippedToday, err = repo.CountStatusSince(ctx, s.DB, officeID, domain.StatusSkipped, midnight); err != nil {
		return nil, err
	}
	if s.Estimator != nil {
		avg, _, err := s.Estimator.averageServiceMinutes(ctx, officeID)
		if err != nil {
			return nil, err
		}
		out.AvgServiceMinutes = avg
	}
	return out, nil
}

// startOfToday returns midnight UTC of the current day.
func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
