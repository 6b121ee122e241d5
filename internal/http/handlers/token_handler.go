// Token HTTP handlers.
//
// This file exposes REST endpoints for the token lifecycle:
//   - POST   /tokens                      (book, idempotent via Idempotency-Key)
//   - GET    /tokens                      (list own tokens)
//   - GET    /tokens/{id}                 (fetch one, annotated)
//   - POST   /tokens/{id}/cancel         (citizen withdrawal)
//   - POST   /tokens/{id}/documents      (attach uploaded document reference)
//   - GET    /tokens/{id}/estimate       (advisory wait estimate)
//   - POST   /tokens/{id}/check-in       (official: arrival)
//   - POST   /tokens/{id}/verify         (official: documents sighted)
//   - POST   /tokens/{id}/skip|complete|recall (official: counter actions)
//   - GET    /tokens/by-number/{number}  (official: scan lookup)
//
// Handlers are transport-thin: they validate input, call application services
// with the decoded actor, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
	"github.com/janseva/go-queue-backend/internal/http/middleware"
	"github.com/janseva/go-queue-backend/internal/repo"
	"github.com/janseva/go-queue-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// TokenService defines token lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TokenService interface {
	// Create books a token for the acting citizen.
	Create(ctx context.Context, actor domain.Actor, in services.CreateTokenInput) (*domain.Token, error)
	// Get fetches one token subject to visibility rules.
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error)
	// GetByNumber resolves a token by printed number within the official's office.
	GetByNumber(ctx context.Context, actor domain.Actor, number string) (*domain.Token, error)
	// ListMine returns the acting citizen's tokens, newest first.
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.Token, error)
	// CheckIn moves pending → checked_in.
	CheckIn(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error)
	// VerifyDocuments moves checked_in → waiting.
	VerifyDocuments(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error)
	// Cancel withdraws the citizen's own token.
	Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Token, error)
	// AttachDocument stores an uploaded document reference on the token.
	AttachDocument(ctx context.Context, actor domain.Actor, id, label string, ref domain.DocumentRef) (*domain.Token, error)
}

// QueueService defines the official's queue operations consumed by handlers.
type QueueService interface {
	ListWaiting(ctx context.Context, actor domain.Actor) ([]domain.Token, error)
	CurrentlyServing(ctx context.Context, actor domain.Actor) (*domain.Token, error)
	ListSkipped(ctx context.Context, actor domain.Actor) ([]domain.Token, error)
	CallNext(ctx context.Context, actor domain.Actor) (*domain.Token, error)
	Skip(ctx context.Context, actor domain.Actor, tokenID string) (*domain.Token, error)
	Complete(ctx context.Context, actor domain.Actor, tokenID string) (*domain.Token, error)
	Recall(ctx context.Context, actor domain.Actor, tokenID string) (*domain.Token, error)
	Summarize(ctx context.Context, actor domain.Actor) (*services.Summary, error)
}

// EstimateService computes advisory wait estimates.
type EstimateService interface {
	ForOffice(ctx context.Context, officeID, departmentID string) (*services.Estimate, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for tokens, queues, and master data.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic. DB is used directly only for the
// booking-key replay lookup and master-data reads.
type Handlers struct {
	tokenSvc TokenService
	queueSvc QueueService
	estSvc   EstimateService

	db            *gorm.DB
	bookingKeyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(tokenSvc TokenService, queueSvc QueueService, estSvc EstimateService, db *gorm.DB, bookingKeyTTL time.Duration) *Handlers {
	return &Handlers{
		tokenSvc:      tokenSvc,
		queueSvc:      queueSvc,
		estSvc:        estSvc,
		db:            db,
		bookingKeyTTL: bookingKeyTTL,
	}
}

// actor extracts the authenticated actor from the Gin context (set by the
// auth middleware). The bool result is false when the route was somehow
// reached unauthenticated; callers must fail with 401 in that case.
func actor(c *gin.Context) (domain.Actor, bool) {
	return middleware.ActorFrom(c)
}

//
// DTOs
//

// CreateTokenRequest is the JSON payload for booking a token.
type CreateTokenRequest struct {
	OfficeID        string  `json:"office_id" binding:"required"`
	DepartmentID    *string `json:"department_id"`
	ServiceName     string  `json:"service_name" binding:"required"`
	AppointmentDate string  `json:"appointment_date" binding:"required"` // YYYY-MM-DD
	AppointmentTime string  `json:"appointment_time" binding:"required"`
}

// AttachDocumentRequest is the JSON payload for attaching a document
// reference. Analysis is the advisory AI verdict produced at upload time by
// the external analyzer; it is stored verbatim.
type AttachDocumentRequest struct {
	Label        string                   `json:"label" binding:"required"`
	URL          string                   `json:"url" binding:"required"`
	DeclaredType string                   `json:"declared_type"`
	Analysis     *domain.DocumentAnalysis `json:"analysis"`
}

// ListTokensResponse wraps the citizen's tokens.
type ListTokensResponse struct {
	Tokens []domain.Token `json:"tokens"`
}

//
// Citizen endpoints
//

// CreateToken books a new token for the calling citizen.
//
// When the request carries an Idempotency-Key that was already used for the
// same (user, office), the originally booked token is returned with 200
// instead of booking a duplicate.
func (h *Handlers) CreateToken(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()

	// Safe-retry: replay a previous booking with the same key.
	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey {
		if rec, err := repo.GetBookingKey(ctx, h.db, act.ID, req.OfficeID, key, time.Now().UTC()); err == nil {
			if tok, err := h.tokenSvc.Get(ctx, act, rec.TokenID); err == nil {
				ok(c, rec.Status, tok)
				return
			}
		}
	}

	tok, err := h.tokenSvc.Create(ctx, act, services.CreateTokenInput{
		OfficeID:        req.OfficeID,
		DepartmentID:    req.DepartmentID,
		ServiceName:     req.ServiceName,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
	})
	if err != nil {
		failService(c, err)
		return
	}

	if hasKey {
		// Best effort: a failed record insert must not fail the booking.
		if _, err := repo.CreateBookingKey(ctx, h.db, act.ID, req.OfficeID, key, tok.ID, http.StatusOK, h.bookingKeyTTL); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("booking key store failed")
		}
	}
	ok(c, http.StatusCreated, tok)
}

// ListTokens returns the calling citizen's tokens, newest first.
func (h *Handlers) ListTokens(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	items, err := h.tokenSvc.ListMine(c.Request.Context(), act)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListTokensResponse{Tokens: items})
}

// GetToken returns one token, annotated with position and estimate when
// waiting.
func (h *Handlers) GetToken(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token id must be a UUID")
		return
	}
	tok, err := h.tokenSvc.Get(c.Request.Context(), act, id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, tok)
}

// CancelToken withdraws the citizen's own token.
func (h *Handlers) CancelToken(c *gin.Context) {
	h.transition(c, h.tokenSvc.Cancel)
}

// AttachDocument stores an uploaded document reference on the token.
func (h *Handlers) AttachDocument(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	tok, err := h.tokenSvc.AttachDocument(c.Request.Context(), act, c.Param("id"), req.Label, domain.DocumentRef{
		URL:          req.URL,
		DeclaredType: req.DeclaredType,
		Analysis:     req.Analysis,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, tok)
}

// TokenEstimate returns the advisory wait estimate for the token's office
// queue. Visibility follows GetToken.
func (h *Handlers) TokenEstimate(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	tok, err := h.tokenSvc.Get(c.Request.Context(), act, c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	dept := ""
	if tok.DepartmentID != nil {
		dept = *tok.DepartmentID
	}
	est, err := h.estSvc.ForOffice(c.Request.Context(), tok.OfficeID, dept)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, est)
}

//
// Official endpoints (per-token)
//

// CheckInToken marks the citizen as arrived (pending → checked_in).
func (h *Handlers) CheckInToken(c *gin.Context) {
	h.transition(c, h.tokenSvc.CheckIn)
}

// VerifyToken confirms documents were sighted (checked_in → waiting).
func (h *Handlers) VerifyToken(c *gin.Context) {
	h.transition(c, h.tokenSvc.VerifyDocuments)
}

// SkipToken marks the serving token as a no-show.
func (h *Handlers) SkipToken(c *gin.Context) {
	h.transition(c, h.queueSvc.Skip)
}

// CompleteToken finishes service for the serving token.
func (h *Handlers) CompleteToken(c *gin.Context) {
	h.transition(c, h.queueSvc.Complete)
}

// RecallToken returns a skipped token to the tail of the waiting pool.
func (h *Handlers) RecallToken(c *gin.Context) {
	h.transition(c, h.queueSvc.Recall)
}

// GetTokenByNumber resolves a token by its printed number (scan flow).
func (h *Handlers) GetTokenByNumber(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token number required")
		return
	}
	tok, err := h.tokenSvc.GetByNumber(c.Request.Context(), act, number)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, tok)
}

// transition runs one status-changing service call for the :id path token
// and writes the updated token or the mapped error.
func (h *Handlers) transition(c *gin.Context, op func(context.Context, domain.Actor, string) (*domain.Token, error)) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token id must be a UUID")
		return
	}
	tok, err := op(c.Request.Context(), act, id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, tok)
}
