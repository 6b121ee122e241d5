// Master-data HTTP handlers.
//
// This file exposes the public browse endpoints for the location and office
// hierarchy used by the booking flow:
//
//	GET /states
//	GET /states/{id}/districts
//	GET /districts/{id}/cities
//	GET /cities/{id}/offices
//	GET /offices/{id}
//	GET /offices/{id}/services
//	GET /offices/{id}/departments
//
// Master data is read-only here; it is provisioned out of band. These routes
// need no authentication.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janseva/go-queue-backend/internal/repo"
)

// ListStates returns all states.
func (h *Handlers) ListStates(c *gin.Context) {
	items, err := repo.ListStates(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list states")
		return
	}
	ok(c, http.StatusOK, gin.H{"states": items})
}

// ListDistricts returns the districts of one state.
func (h *Handlers) ListDistricts(c *gin.Context) {
	items, err := repo.ListDistricts(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list districts")
		return
	}
	ok(c, http.StatusOK, gin.H{"districts": items})
}

// ListCities returns the cities of one district.
func (h *Handlers) ListCities(c *gin.Context) {
	items, err := repo.ListCities(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list cities")
		return
	}
	ok(c, http.StatusOK, gin.H{"cities": items})
}

// ListOffices returns the active offices of one city.
func (h *Handlers) ListOffices(c *gin.Context) {
	items, err := repo.ListOffices(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list offices")
		return
	}
	ok(c, http.StatusOK, gin.H{"offices": items})
}

// GetOffice returns one office.
func (h *Handlers) GetOffice(c *gin.Context) {
	office, err := repo.GetOffice(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "office not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load office")
		return
	}
	ok(c, http.StatusOK, office)
}

// ListOfficeServices returns the services offered by one office.
func (h *Handlers) ListOfficeServices(c *gin.Context) {
	items, err := repo.ListServices(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list services")
		return
	}
	ok(c, http.StatusOK, gin.H{"services": items})
}

// ListOfficeDepartments returns the departments of one office.
func (h *Handlers) ListOfficeDepartments(c *gin.Context) {
	items, err := repo.ListDepartments(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list departments")
		return
	}
	ok(c, http.StatusOK, gin.H{"departments": items})
}
