package domain

import "time"

// Master data: the state → district → city → office → service hierarchy that
// citizens browse when booking. These are read-only reference rows; the queue
// engine treats them as foreign keys with no cascading logic of its own.

// State is a top-level administrative region.
type State struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (State) TableName() string { return "states" }

// District belongs to a state.
type District struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	StateID   string    `json:"state_id" gorm:"type:char(36);not null;index"`
	Name      string    `json:"name"     gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (District) TableName() string { return "districts" }

// City belongs to a district.
type City struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	DistrictID string    `json:"district_id" gorm:"type:char(36);not null;index"`
	Name       string    `json:"name"        gorm:"type:varchar(128);not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (City) TableName() string { return "cities" }

// Office is a government office citizens can book tokens at. Code is the
// short uppercase prefix used in token numbers (e.g. "RTO").
type Office struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	CityID    string    `json:"city_id" gorm:"type:char(36);not null;index"`
	Code      string    `json:"code"    gorm:"type:varchar(12);not null;uniqueIndex"`
	Name      string    `json:"name"    gorm:"type:varchar(255);not null"`
	Address   string    `json:"address" gorm:"type:text"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (Office) TableName() string { return "offices" }

// Department is an optional subdivision of an office (e.g. "Licensing").
type Department struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	OfficeID  string    `json:"office_id" gorm:"type:char(36);not null;index"`
	Name      string    `json:"name"      gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Department) TableName() string { return "departments" }

// Service is something an office offers (e.g. "Driving Licence Renewal").
type Service struct {
	ID           string    `json:"id"        gorm:"type:char(36);primaryKey"`
	OfficeID     string    `json:"office_id" gorm:"type:char(36);not null;index"`
	DepartmentID *string   `json:"department_id,omitempty" gorm:"type:char(36);index"`
	Name         string    `json:"name"      gorm:"type:varchar(255);not null"`
	Description  string    `json:"description" gorm:"type:text"`
	RequiredDocs []string  `json:"required_docs,omitempty" gorm:"serializer:json"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Service) TableName() string { return "services" }
