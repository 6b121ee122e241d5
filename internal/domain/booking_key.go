package domain

import "time"

// BookingKey records the outcome of a previously processed booking request,
// keyed by (user_id, office_id, key). It enables safe retries of
// POST /tokens: a replay with the same Idempotency-Key returns the originally
// created token instead of booking a second one.
type BookingKey struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_office_key,priority:1"`
	OfficeID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_office_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_office_key,priority:3"`
	TokenID   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (BookingKey) TableName() string { return "booking_keys" }
