// Package events defines the transition event emitted whenever a token
// status change commits, and the Publisher boundary the queue engine uses to
// announce it. Delivery is at-most-once best effort: listeners (citizen and
// official views) subscribe per office, and the engine's correctness never
// depends on a publish reaching anyone.
package events

import (
	"time"

	"github.com/janseva/go-queue-backend/internal/domain"
)

// Event describes one committed token status transition.
type Event struct {
	OfficeID    string             `json:"office_id"`
	TokenID     string             `json:"token_id"`
	TokenNumber string             `json:"token_number"`
	OldStatus   domain.TokenStatus `json:"old_status"`
	NewStatus   domain.TokenStatus `json:"new_status"`
	At          time.Time          `json:"at"`
}

// Publisher fans a transition event out to whoever is listening for that
// office. Implementations must not block the caller: a slow or absent
// listener is dropped, not waited on.
type Publisher interface {
	Publish(ev Event)
}

// Nop is a Publisher that discards every event. Useful in tests and for
// deployments without a live feed.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(Event) {}
