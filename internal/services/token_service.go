// Package services – TokenService
//
// This file implements the TokenService (the token store): booking new
// tokens and performing guarded status transitions. The service owns token
// status and timestamps exclusively; the queue selector only reads and
// delegates the actual transition back here. Every transition is a single
// conditional UPDATE so that concurrent officials cannot double-serve a
// token, and every committed transition is published to the office's live
// feed.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
	"github.com/janseva/go-queue-backend/internal/events"
	"github.com/janseva/go-queue-backend/internal/repo"
)

// tokenNumberAttempts bounds retries when two bookings race for the same
// per-day sequence number.
const tokenNumberAttempts = 3

// TokenService implements booking and the guarded status machine.
type TokenService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Publisher receives one event per committed transition. Never nil.
	Publisher events.Publisher
	// Estimator, when set, fills estimated wait minutes on reads of
	// waiting tokens.
	Estimator *EstimateService
}

// NewTokenService constructs a TokenService with a no-op publisher.
func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{DB: db, Publisher: events.Nop{}}
}

// CreateTokenInput is the booking payload.
type CreateTokenInput struct {
	OfficeID        string
	DepartmentID    *string
	ServiceName     string
	AppointmentDate string // YYYY-MM-DD
	AppointmentTime string // citizen-selected slot, advisory
}

// Create books a new token for the acting citizen. It validates the office,
// department, and service references, allocates a token number unique within
// (office, appointment date), and persists the token with status pending.
func (s *TokenService) Create(ctx context.Context, actor domain.Actor, in CreateTokenInput) (*domain.Token, error) {
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	in.AppointmentTime = strings.TrimSpace(in.AppointmentTime)
	if in.ServiceName == "" || in.AppointmentTime == "" {
		return nil, ErrInvalidInput
	}
	date, err := time.Parse("2006-01-02", in.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	office, err := repo.GetOffice(ctx, s.DB, in.OfficeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}
	if !office.IsActive {
		return nil, ErrOfficeNotFound
	}
	if in.DepartmentID != nil {
		dep, err := repo.GetDepartment(ctx, s.DB, *in.DepartmentID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		if dep.OfficeID != office.ID {
			return nil, ErrDepartmentNotFound
		}
	}
	if _, err := repo.GetServiceByName(ctx, s.DB, office.ID, in.ServiceName); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	// Allocate the next sequence number for (office, date). A concurrent
	// booking can race for the same number; the unique index catches it and
	// we re-count.
	for attempt := 0; attempt < tokenNumberAttempts; attempt++ {
		seq, err := repo.CountForOfficeDate(ctx, s.DB, office.ID, in.AppointmentDate)
		if err != nil {
			return nil, err
		}
		tok := &domain.Token{
			ID:              uuid.NewString(),
			TokenNumber:     fmt.Sprintf("%s-%s-%03d", office.Code, date.Format("0201"), seq+1),
			UserID:          actor.ID,
			OfficeID:        office.ID,
			DepartmentID:    in.DepartmentID,
			ServiceName:     in.ServiceName,
			AppointmentDate: in.AppointmentDate,
			AppointmentTime: in.AppointmentTime,
			Status:          domain.StatusPending,
			CreatedAt:       time.Now().UTC(),
		}
		if err := repo.CreateToken(ctx, s.DB, tok); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return tok, nil
	}
	return nil, ErrStaleStatus
}

// Get fetches a token, enforcing visibility: citizens see only their own
// tokens, officials only tokens in their bound scope. For waiting tokens the
// queue position and estimated wait are recomputed on the way out.
func (s *TokenService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error) {
	tok, err := repo.GetToken(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if err := s.authorizeRead(actor, tok); err != nil {
		return nil, err
	}
	s.annotate(ctx, tok)
	return tok, nil
}

// GetByNumber resolves a token by its printed number within the official's
// office. Used by the scan/lookup flow at check-in.
func (s *TokenService) GetByNumber(ctx context.Context, actor domain.Actor, number string) (*domain.Token, error) {
	if !actor.IsOfficial() {
		return nil, ErrNotPermitted
	}
	tok, err := repo.GetTokenByNumber(ctx, s.DB, actor.OfficeID, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if !actor.InScope(tok.OfficeID, tok.DepartmentID) {
		return nil, ErrNotPermitted
	}
	s.annotate(ctx, tok)
	return tok, nil
}

// ListMine returns the acting citizen's tokens, newest first, with waiting
// tokens annotated.
func (s *TokenService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Token, error) {
	out, err := repo.ListUserTokens(ctx, s.DB, actor.ID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		s.annotate(ctx, &out[i])
	}
	return out, nil
}

// Transition atomically moves a token from `from` to `to` on behalf of
// actor. The expected pre-state is verified inside the UPDATE itself; a lost
// race surfaces as ErrStaleStatus so the caller can re-read and retry or
// abort.
//
// Side effects by target status:
//   - serving:  served_by and served_at are set to the actor and now.
//   - waiting:  waiting_since is stamped, which places the token at the tail
//     of the waiting order (so a recalled token loses its prior position).
//
// On success the committed transition is published to the office feed.
func (s *TokenService) Transition(ctx context.Context, actor domain.Actor, id string, from, to domain.TokenStatus) (*domain.Token, error) {
	tok, err := repo.GetToken(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if err := s.authorizeTransition(actor, tok, to); err != nil {
		return nil, err
	}
	if !from.CanTransition(to) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	extra := map[string]any{}
	switch to {
	case domain.StatusServing:
		extra["served_by"] = actor.ID
		extra["served_at"] = now
	case domain.StatusWaiting:
		extra["waiting_since"] = now
	}

	n, err := repo.UpdateTokenStatus(ctx, s.DB, id, from, to, extra)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either the token vanished or its status moved underneath us.
		if _, err := repo.GetToken(ctx, s.DB, id); errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, ErrStaleStatus
	}

	tok, err = repo.GetToken(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	s.Publisher.Publish(events.Event{
		OfficeID:    tok.OfficeID,
		TokenID:     tok.ID,
		TokenNumber: tok.TokenNumber,
		OldStatus:   from,
		NewStatus:   to,
		At:          now,
	})
	return tok, nil
}

// CheckIn moves a pending token to checked_in when the citizen arrives.
func (s *TokenService) CheckIn(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error) {
	return s.Transition(ctx, actor, id, domain.StatusPending, domain.StatusCheckedIn)
}

// VerifyDocuments moves a checked_in token into the waiting pool after the
// official has sighted the citizen's documents.
func (s *TokenService) VerifyDocuments(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error) {
	return s.Transition(ctx, actor, id, domain.StatusCheckedIn, domain.StatusWaiting)
}

// Cancel lets a citizen withdraw their own token before it enters the
// waiting pool. Tokens that are waiting or serving hold an active queue slot
// and need an official.
func (s *TokenService) Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error) {
	tok, err := repo.GetToken(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return s.Transition(ctx, actor, id, tok.Status, domain.StatusCancelled)
}

// AttachDocument stores an uploaded document reference (and any advisory AI
// analysis that came with it) on the citizen's own token. The reference is
// opaque to the queue engine and never gates a transition.
func (s *TokenService) AttachDocument(ctx context.Context, actor domain.Actor, id, label string, ref domain.DocumentRef) (*domain.Token, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.TrimSpace(ref.URL) == "" {
		return nil, ErrInvalidInput
	}

	var out *domain.Token
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := repo.GetToken(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if tok.UserID != actor.ID {
			return ErrNotPermitted
		}
		if tok.Status.Terminal() {
			return ErrInvalidTransition
		}
		if ref.UploadedAt.IsZero() {
			ref.UploadedAt = time.Now().UTC()
		}
		if tok.Documents == nil {
			tok.Documents = domain.DocumentMap{}
		}
		tok.Documents[label] = ref
		if err := tx.Model(tok).Select("documents", "updated_at").Updates(map[string]any{
			"documents":  tok.Documents,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		out = tok
		return nil
	})
	return out, err
}

// authorizeRead enforces read visibility.
func (s *TokenService) authorizeRead(actor domain.Actor, tok *domain.Token) error {
	if actor.IsOfficial() {
		if !actor.InScope(tok.OfficeID, tok.DepartmentID) {
			return ErrNotPermitted
		}
		return nil
	}
	if tok.UserID != actor.ID {
		return ErrNotPermitted
	}
	return nil
}

// authorizeTransition enforces who may trigger which edge: officials act on
// any token in their bound scope; citizens may only cancel their own token.
func (s *TokenService) authorizeTransition(actor domain.Actor, tok *domain.Token, to domain.TokenStatus) error {
	if actor.IsOfficial() {
		if !actor.InScope(tok.OfficeID, tok.DepartmentID) {
			return ErrNotPermitted
		}
		return nil
	}
	if tok.UserID != actor.ID || to != domain.StatusCancelled {
		return ErrNotPermitted
	}
	return nil
}

// annotate fills the view-only fields (queue position, estimated wait) for a
// waiting token. Best effort: annotation failures never fail the read.
func (s *TokenService) annotate(ctx context.Context, tok *domain.Token) {
	if tok.Status != domain.StatusWaiting {
		return
	}
	dept := ""
	if tok.DepartmentID != nil {
		dept = *tok.DepartmentID
	}
	if pos, err := repo.WaitingPosition(ctx, s.DB, tok); err == nil {
		p := int(pos)
		tok.PositionInQueue = &p
	}
	if s.Estimator != nil {
		if est, err := s.Estimator.ForOffice(ctx, tok.OfficeID, dept); err == nil {
			m := est.EstimatedMinutes
			tok.EstimatedWaitMinutes = &m
		}
	}
}

// isUniqueViolation detects unique-constraint violations across drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
