package domain

import (
	"time"

	"gorm.io/gorm"
)

// Token is a citizen's queue ticket for one service visit at an office.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - TokenNumber: human-readable number in the form <OFFICE-CODE>-<DDMM>-<SEQ>,
//     unique per office per appointment date and immutable once assigned.
//   - UserID: the citizen who booked the token.
//   - OfficeID / DepartmentID: queue scope. DepartmentID is optional.
//   - ServiceName: the requested service, denormalized as in the source schema.
//   - AppointmentDate / AppointmentTime: citizen-selected slot; advisory only,
//     not a hard reservation.
//   - Status: lifecycle state, see status.go.
//   - PositionInQueue / EstimatedWaitMinutes: view-only values recomputed on
//     read; never authoritative.
//   - WaitingSince: set on every entry into waiting. It orders the waiting
//     pool, so a recalled token (re-timestamped) lands at the tail.
//   - ServedAt / ServedBy: audit fields set by transitions into serving and
//     completed.
//   - Documents: uploaded document references keyed by label. Opaque to the
//     queue engine.
type Token struct {
	ID           string      `json:"id"            gorm:"type:char(36);primaryKey"`
	TokenNumber  string      `json:"token_number"  gorm:"type:varchar(32);not null;uniqueIndex:ux_office_number"`
	UserID       string      `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_user_tokens"`
	OfficeID     string      `json:"office_id"     gorm:"type:char(36);not null;index:idx_office_status,priority:1;uniqueIndex:ux_office_number"`
	DepartmentID *string     `json:"department_id,omitempty" gorm:"type:char(36);index"`
	ServiceName  string      `json:"service_name"  gorm:"type:varchar(255);not null"`

	AppointmentDate string `json:"appointment_date" gorm:"type:varchar(10);not null;index"`
	AppointmentTime string `json:"appointment_time" gorm:"type:varchar(16);not null"`

	Status               TokenStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index:idx_office_status,priority:2"`
	PositionInQueue      *int        `json:"position_in_queue,omitempty" gorm:"-"`
	EstimatedWaitMinutes *int        `json:"estimated_wait_minutes,omitempty" gorm:"-"`

	WaitingSince *time.Time `json:"waiting_since,omitempty" gorm:"index"`
	ServedAt     *time.Time `json:"served_at,omitempty"`
	ServedBy     *string    `json:"served_by,omitempty" gorm:"type:varchar(64)"`

	Documents DocumentMap `json:"documents,omitempty" gorm:"serializer:json"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Token.
func (Token) TableName() string { return "tokens" }

// DocumentMap maps a document label (e.g. "aadhaar_card") to its uploaded
// reference. Stored as a JSON column on the token row.
type DocumentMap map[string]DocumentRef

// DocumentRef points at an uploaded document in the external object store,
// together with the advisory AI analysis attached at upload time. The queue
// engine stores it opaquely and never gates a transition on it.
type DocumentRef struct {
	URL          string            `json:"url"`
	DeclaredType string            `json:"declared_type,omitempty"`
	UploadedAt   time.Time         `json:"uploaded_at"`
	Analysis     *DocumentAnalysis `json:"analysis,omitempty"`
}

// DocumentAnalysis is the AI analyzer verdict for one document. Advisory only.
type DocumentAnalysis struct {
	Valid       bool     `json:"valid"`
	Confidence  int      `json:"confidence"` // 0-100
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Actor roles.
const (
	RoleCitizen  = "citizen"
	RoleOfficial = "official"
)

// Actor is the authenticated caller of a token or queue operation, decoded
// from the identity provider's claims. Officials carry the office (and
// optionally department) scope that bounds which tokens they may act on;
// the engine trusts these claims and passes the actor explicitly into every
// call instead of reading ambient auth state.
type Actor struct {
	ID           string
	Role         string
	OfficeID     string
	DepartmentID string
}

// IsOfficial reports whether the actor holds the official role.
func (a Actor) IsOfficial() bool { return a.Role == RoleOfficial }

// InScope reports whether an official's bound office/department covers a
// token in officeID/departmentID. An official without a department claim
// covers the whole office.
func (a Actor) InScope(officeID string, departmentID *string) bool {
	if a.OfficeID != officeID {
		return false
	}
	if a.DepartmentID == "" {
		return true
	}
	return departmentID != nil && *departmentID == a.DepartmentID
}
