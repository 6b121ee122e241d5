// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only lookups for the master-data
// hierarchy (states, districts, cities, offices, departments, services) that
// citizens browse when booking a token.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/domain"
)

// ListStates returns all states ordered by name.
func ListStates(ctx context.Context, db *gorm.DB) ([]domain.State, error) {
	var out []domain.State
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// ListDistricts returns the districts of a state ordered by name.
func ListDistricts(ctx context.Context, db *gorm.DB, stateID string) ([]domain.District, error) {
	var out []domain.District
	err := db.WithContext(ctx).Where("state_id = ?", stateID).Order("name asc").Find(&out).Error
	return out, err
}

// ListCities returns the cities of a district ordered by name.
func ListCities(ctx context.Context, db *gorm.DB, districtID string) ([]domain.City, error) {
	var out []domain.City
	err := db.WithContext(ctx).Where("district_id = ?", districtID).Order("name asc").Find(&out).Error
	return out, err
}

// ListOffices returns the active offices of a city ordered by name.
func ListOffices(ctx context.Context, db *gorm.DB, cityID string) ([]domain.Office, error) {
	var out []domain.Office
	err := db.WithContext(ctx).
		Where("city_id = ? AND is_active = ?", cityID, true).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// GetOffice fetches one office by ID, or ErrNotFound if missing.
func GetOffice(ctx context.Context, db *gorm.DB, id string) (*domain.Office, error) {
	var o domain.Office
	if err := db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListDepartments returns the departments of an office ordered by name.
func ListDepartments(ctx context.Context, db *gorm.DB, officeID string) ([]domain.Department, error) {
	var out []domain.Department
	err := db.WithContext(ctx).Where("office_id = ?", officeID).Order("name asc").Find(&out).Error
	return out, err
}

// GetDepartment fetches one department by ID, or ErrNotFound if missing.
func GetDepartment(ctx context.Context, db *gorm.DB, id string) (*domain.Department, error) {
	var d domain.Department
	if err := db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListServices returns the services an office offers ordered by name.
func ListServices(ctx context.Context, db *gorm.DB, officeID string) ([]domain.Service, error) {
	var out []domain.Service
	err := db.WithContext(ctx).Where("office_id = ?", officeID).Order("name asc").Find(&out).Error
	return out, err
}

// GetServiceByName fetches an office's service by its display name, or
// ErrNotFound if the office does not offer it. Token rows denormalize the
// service name (the source schema has no clean service foreign key), so
// booking validates against the name.
func GetServiceByName(ctx context.Context, db *gorm.DB, officeID, name string) (*domain.Service, error) {
	var s domain.Service
	err := db.WithContext(ctx).
		Where("office_id = ? AND name = ?", officeID, name).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
