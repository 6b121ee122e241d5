// Package domain defines the persistence models for tokens, counters, and
// master data, plus the token status machine. These types are mapped with
// GORM and form the core data layer of the queue backend.
package domain

// TokenStatus is the lifecycle state of a queue token.
type TokenStatus string

// Token lifecycle states. A token is created pending, is checked in at the
// office, enters the waiting pool once documents are verified, is promoted to
// serving by call-next, and ends completed, cancelled, or skipped. Skipped is
// the only non-terminal "end": a recall puts the token back at the tail of
// the waiting pool.
const (
	StatusPending   TokenStatus = "pending"
	StatusCheckedIn TokenStatus = "checked_in"
	StatusWaiting   TokenStatus = "waiting"
	StatusServing   TokenStatus = "serving"
	StatusCompleted TokenStatus = "completed"
	StatusSkipped   TokenStatus = "skipped"
	StatusCancelled TokenStatus = "cancelled"
)

// transitions maps each status to the set of statuses it may move to.
// Completed and cancelled are terminal and have no outgoing edges.
var transitions = map[TokenStatus][]TokenStatus{
	StatusPending:   {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusWaiting, StatusCancelled},
	StatusWaiting:   {StatusServing},
	StatusServing:   {StatusCompleted, StatusSkipped},
	StatusSkipped:   {StatusWaiting},
}

// Valid reports whether s is one of the known token statuses.
func (s TokenStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCheckedIn, StatusWaiting, StatusServing,
		StatusCompleted, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of s.
func (s TokenStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a token may move from s to next.
func (s TokenStatus) CanTransition(next TokenStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
