// Queue HTTP handlers.
//
// This file exposes the official-facing queue endpoints:
//   - GET  /queue               (waiting pool, positions + estimates)
//   - GET  /queue/serving       (the at-most-one serving token)
//   - GET  /queue/skipped       (recall panel)
//   - POST /queue/next          (promote the head to serving)
//   - GET  /analytics/summary   (office dashboard aggregate)
//
// All routes sit behind the RequireOfficial middleware; the services enforce
// office/department scope on top of that.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janseva/go-queue-backend/internal/domain"
	"github.com/janseva/go-queue-backend/internal/utils"
)

// QueueResponse wraps the waiting pool for an office queue.
type QueueResponse struct {
	Tokens []domain.Token `json:"tokens"`
}

// ServingResponse wraps the currently serving token. Token is null when the
// counter is idle.
type ServingResponse struct {
	Token *domain.Token `json:"token"`
}

// ListQueue returns the waiting pool in service order for the official's
// scope, with positions and wait estimates recomputed for this call.
// A limit query parameter caps the result for display boards.
func (h *Handlers) ListQueue(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	items, err := h.queueSvc.ListWaiting(c.Request.Context(), act)
	if err != nil {
		failService(c, err)
		return
	}
	if limit := utils.AtoiDefault(c.Query("limit"), 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	ok(c, http.StatusOK, QueueResponse{Tokens: items})
}

// CurrentlyServing returns the serving token, or a null token when idle.
func (h *Handlers) CurrentlyServing(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	tok, err := h.queueSvc.CurrentlyServing(c.Request.Context(), act)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ServingResponse{Token: tok})
}

// ListSkippedQueue returns skipped tokens available for recall, oldest first.
func (h *Handlers) ListSkippedQueue(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	items, err := h.queueSvc.ListSkipped(c.Request.Context(), act)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, QueueResponse{Tokens: items})
}

// CallNext promotes the head of the waiting pool to serving.
//
// Responses:
//   - 200 with the promoted token
//   - 204 when the pool is empty
//   - 409 counter_busy while another token is being served
func (h *Handlers) CallNext(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	tok, err := h.queueSvc.CallNext(c.Request.Context(), act)
	if err != nil {
		failService(c, err)
		return
	}
	if tok == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, tok)
}

// AnalyticsSummary returns the dashboard aggregate for the official's office.
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	act, okAuth := actor(c)
	if !okAuth {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	sum, err := h.queueSvc.Summarize(c.Request.Context(), act)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}
