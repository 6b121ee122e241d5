package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/janseva/go-queue-backend/internal/domain"
)

func TestBookingKey_CreateGetRoundTrip(t *testing.T) {
	db := newRepoDB(t, &domain.BookingKey{})
	ctx := context.Background()

	rec, err := CreateBookingKey(ctx, db, "u1", "off1", "key-1", "tok-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateBookingKey: %v", err)
	}
	if rec.ID == "" || rec.TokenID != "tok-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetBookingKey(ctx, db, "u1", "off1", "key-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetBookingKey: %v", err)
	}
	if got.TokenID != "tok-1" || got.Status != 201 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestBookingKey_DuplicateTuple(t *testing.T) {
	db := newRepoDB(t, &domain.BookingKey{})
	ctx := context.Background()

	if _, err := CreateBookingKey(ctx, db, "u1", "off1", "key-1", "tok-1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateBookingKey(ctx, db, "u1", "off1", "key-1", "tok-2", 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Different office is a different tuple.
	if _, err := CreateBookingKey(ctx, db, "u1", "off2", "key-1", "tok-3", 201, time.Hour); err != nil {
		t.Fatalf("different tuple must succeed: %v", err)
	}
}

func TestBookingKey_ExpiredInvisible(t *testing.T) {
	db := newRepoDB(t, &domain.BookingKey{})
	ctx := context.Background()

	if _, err := CreateBookingKey(ctx, db, "u1", "off1", "key-1", "tok-1", 201, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := GetBookingKey(ctx, db, "u1", "off1", "key-1", time.Now().UTC().Add(time.Second)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired key, got %v", err)
	}
}

func TestBookingKey_EmptyOfficeNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.BookingKey{})
	if _, err := GetBookingKey(context.Background(), db, "u1", "", "key", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty office, got %v", err)
	}
}
