// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the BookingKey
// model used to implement safe-retry semantics for the booking endpoint.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
)

// ErrDuplicate indicates that a booking-key record already exists for the
// given (user_id, office_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetBookingKey returns a non-expired record or ErrNotFound.
func GetBookingKey(ctx context.Context, db *gorm.DB, userID, officeID, key string, now time.Time) (*domain.BookingKey, error) {
	if strings.TrimSpace(officeID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.BookingKey
	err := db.WithContext(ctx).
		Where("user_id = ? AND office_id = ? AND key = ? AND expires_at > ?", userID, officeID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// HasBookingKey reports whether any non-expired record exists for
// (user_id, key) across offices. Used by the idempotency middleware to flag
// replays before the handler resolves the exact record.
func HasBookingKey(ctx context.Context, db *gorm.DB, userID, key string, now time.Time) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.BookingKey{}).
		Where("user_id = ? AND key = ? AND expires_at > ?", userID, key, now).
		Count(&n).Error
	return n > 0, err
}

// CreateBookingKey inserts a record and returns ErrDuplicate on unique violation.
func CreateBookingKey(ctx context.Context, db *gorm.DB, userID, officeID, key, tokenID string, status int, ttl time.Duration) (*domain.BookingKey, error) {
	now := time.Now().UTC()
	rec := &domain.BookingKey{
		ID:        uuid.NewString(),
		UserID:    userID,
		OfficeID:  officeID,
		Key:       key,
		TokenID:   tokenID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
