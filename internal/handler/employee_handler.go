package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linguaportal/staff-api/internal/service"
	"github.com/linguaportal/staff-api/pkg/response"
)

// EmployeeHandler serves managers and secondary employee profiles.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler constructs a new EmployeeHandler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// ListManagers godoc
// @Summary List managers
// @Tags Employees
// @Produce json
// @Param active query bool false "Only managers with active accounts"
// @Success 200 {object} response.Envelope
// @Router /managers [get]
func (h *EmployeeHandler) ListManagers(c *gin.Context) {
	activeOnly := strings.EqualFold(c.Query("active"), "true")
	managers, err := h.employees.Managers(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, managers, nil)
}

// GetManager godoc
// @Summary Get manager detail
// @Tags Employees
// @Produce json
// @Param id path string true "Manager ID"
// @Success 200 {object} response.Envelope
// @Router /managers/{id} [get]
func (h *EmployeeHandler) GetManager(c *gin.Context) {
	manager, err := h.employees.ManagerDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, manager, nil)
}

// GetProfile godoc
// @Summary Secondary employee profile for a user
// @Tags Employees
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{user_id}/profile [get]
func (h *EmployeeHandler) GetProfile(c *gin.Context) {
	profile, err := h.employees.Profile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// GetProfilePhoto godoc
// @Summary Profile image for a user with an employee profile
// @Tags Employees
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{user_id}/photo [get]
func (h *EmployeeHandler) GetProfilePhoto(c *gin.Context) {
	photo, err := h.employees.ProfilePhoto(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"photo": photo}, nil)
}
