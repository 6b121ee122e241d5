// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Token model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// The one concurrency-sensitive primitive lives here: UpdateTokenStatus
// performs a conditional UPDATE (WHERE id = ? AND status = ?) so that two
// officials racing on the same token cannot both win. Callers inspect the
// affected-row count to distinguish success from a stale-status conflict.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
)

// CreateToken inserts a fully populated token row. The caller is responsible
// for allocating ID and TokenNumber. On failure, the DB error is returned
// (a unique violation on token_number surfaces as a raw driver error and is
// retried by the service).
func CreateToken(ctx context.Context, db *gorm.DB, t *domain.Token) error {
	return db.WithContext(ctx).Create(t).Error
}

// GetToken fetches a token by ID, or ErrNotFound if missing.
func GetToken(ctx context.Context, db *gorm.DB, id string) (*domain.Token, error) {
	var t domain.Token
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTokenByNumber fetches a token by its human-readable number within an
// office, or ErrNotFound if missing. Used by the official scan/lookup flow.
func GetTokenByNumber(ctx context.Context, db *gorm.DB, officeID, number string) (*domain.Token, error) {
	var t domain.Token
	err := db.WithContext(ctx).
		Where("office_id = ? AND token_number = ?", officeID, number).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListUserTokens returns all tokens booked by userID, newest first.
func ListUserTokens(ctx context.Context, db *gorm.DB, userID string) ([]domain.Token, error) {
	var out []domain.Token
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdateTokenStatus atomically moves a token from status `from` to status
// `to`, applying any extra column updates in the same statement. It returns
// the number of affected rows: 1 on success, 0 when the token's current
// status no longer matches `from` (or the token does not exist); the caller
// must re-read and decide between NotFound and Conflict.
func UpdateTokenStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.TokenStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// scopeQueue narrows a tokens query to an office and, when departmentID is
// non-empty, to one department.
func scopeQueue(q *gorm.DB, officeID, departmentID string) *gorm.DB {
	q = q.Where("office_id = ?", officeID)
	if departmentID != "" {
		q = q.Where("department_id = ?", departmentID)
	}
	return q
}

// ListWaiting returns the waiting pool for an office (optionally narrowed to
// a department), ordered by entry into waiting with creation time as the tie
// breaker. This ordering, not a stored position column, is the queue order.
func ListWaiting(ctx context.Context, db *gorm.DB, officeID, departmentID string) ([]domain.Token, error) {
	var out []domain.Token
	err := scopeQueue(db.WithContext(ctx), officeID, departmentID).
		Where("status = ?", domain.StatusWaiting).
		Order("waiting_since asc").
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CurrentlyServing returns the at-most-one serving token in scope, or
// (nil, nil) when the counter is idle.
func CurrentlyServing(ctx context.Context, db *gorm.DB, officeID, departmentID string) (*domain.Token, error) {
	var out []domain.Token
	err := scopeQueue(db.WithContext(ctx), officeID, departmentID).
		Where("status = ?", domain.StatusServing).
		Limit(1).
		Find(&out).Error
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// ListSkipped returns skipped tokens in scope, oldest first, for the recall
// panel.
func ListSkipped(ctx context.Context, db *gorm.DB, officeID, departmentID string) ([]domain.Token, error) {
	var out []domain.Token
	err := scopeQueue(db.WithContext(ctx), officeID, departmentID).
		Where("status = ?", domain.StatusSkipped).
		Order("updated_at asc").
		Find(&out).Error
	return out, err
}

// WaitingPosition returns the 1-based position of a waiting token within its
// office queue: one plus the number of waiting tokens in the same office
// that entered waiting strictly earlier (creation time breaks ties).
func WaitingPosition(ctx context.Context, db *gorm.DB, tok *domain.Token) (int64, error) {
	if tok.Status != domain.StatusWaiting || tok.WaitingSince == nil {
		return 0, nil
	}
	var ahead int64
	err := db.WithContext(ctx).Model(&domain.Token{}).
		Where("office_id = ? AND status = ?", tok.OfficeID, domain.StatusWaiting).
		Where("waiting_since < ? OR (waiting_since = ? AND created_at < ?)", tok.WaitingSince, tok.WaitingSince, tok.CreatedAt).
		Count(&ahead).Error
	return ahead + 1, err
}

// CountActive returns the number of tokens in scope with status waiting or
// serving. This is the queue depth the wait estimator uses.
func CountActive(ctx context.Context, db *gorm.DB, officeID, departmentID string) (int64, error) {
	var n int64
	err := scopeQueue(db.WithContext(ctx).Model(&domain.Token{}), officeID, departmentID).
		Where("status IN ?", []domain.TokenStatus{domain.StatusWaiting, domain.StatusServing}).
		Count(&n).Error
	return n, err
}

// CountStatusSince counts tokens in an office that reached `status` and were
// updated at or after `since`. Used by the analytics summary.
func CountStatusSince(ctx context.Context, db *gorm.DB, officeID string, status domain.TokenStatus, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Token{}).
		Where("office_id = ? AND status = ? AND updated_at >= ?", officeID, status, since).
		Count(&n).Error
	return n, err
}

// RecentCompleted returns up to limit completed tokens for an office with a
// recorded served_at, most recently served first. Estimator sample source.
func RecentCompleted(ctx context.Context, db *gorm.DB, officeID string, limit int) ([]domain.Token, error) {
	var out []domain.Token
	err := db.WithContext(ctx).
		Where("office_id = ? AND status = ? AND served_at IS NOT NULL", officeID, domain.StatusCompleted).
		Order("served_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountForOfficeDate returns the number of tokens an office has for one
// appointment date, soft-deleted rows included so generated sequence numbers
// are never reused within a day.
func CountForOfficeDate(ctx context.Context, db *gorm.DB, officeID, date string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Unscoped().Model(&domain.Token{}).
		Where("office_id = ? AND appointment_date = ?", officeID, date).
		Count(&n).Error
	return n, err
}

// ListStalePending returns up to limit pending tokens created before cutoff,
// oldest first. Feed for the expiry sweeper.
func ListStalePending(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) ([]domain.Token, error) {
	var out []domain.Token
	err := db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.StatusPending, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
