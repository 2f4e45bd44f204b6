package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linguaportal/staff-api/internal/models"
	"github.com/linguaportal/staff-api/internal/service"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
	"github.com/linguaportal/staff-api/pkg/response"
)

// TeacherHandler wires teacher services to HTTP routes.
type TeacherHandler struct {
	teachers  *service.TeacherService
	metrics   *service.TeacherMetricsService
	materials *service.MaterialsService
	contracts *service.ContractService
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService, metrics *service.TeacherMetricsService, materials *service.MaterialsService, contracts *service.ContractService) *TeacherHandler {
	return &TeacherHandler{
		teachers:  teachers,
		metrics:   metrics,
		materials: materials,
		contracts: contracts,
	}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active status"
// @Param language query string false "Filter by taught language code"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (first_name,created_at,work_since)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	filter := models.TeacherFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		LanguageCode: c.Query("language"),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if active := c.Query("active"); active != "" {
		switch strings.ToLower(active) {
		case "true":
			val := true
			filter.Active = &val
		case "false":
			val := false
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	teachers, pagination, err := h.teachers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	detail, err := h.teachers.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Onboard godoc
// @Summary Onboard a new teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.OnboardTeacherRequest true "Onboarding payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Onboard(c *gin.Context) {
	var req service.OnboardTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid onboarding payload"))
		return
	}
	teacher, err := h.teachers.Onboard(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Block godoc
// @Summary Block a teacher
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /teachers/{id}/block [post]
func (h *TeacherHandler) Block(c *gin.Context) {
	if err := h.teachers.Block(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Metrics godoc
// @Summary Demo lesson aggregates and conversion ratio
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/metrics [get]
func (h *TeacherHandler) Metrics(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	metrics, err := h.metrics.Metrics(c.Request.Context(), teacher.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}

// SalaryTerms godoc
// @Summary Payout settings for a teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/salary-terms [get]
func (h *TeacherHandler) SalaryTerms(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	terms, err := h.teachers.SalaryTerms(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// BasicMaterials godoc
// @Summary Coursebook templates with signed download URLs
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/basic-materials [get]
func (h *TeacherHandler) BasicMaterials(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	materials, err := h.materials.BasicMaterials(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}

// Materials godoc
// @Summary Uploaded materials matching the teacher's language and market
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/materials [get]
func (h *TeacherHandler) Materials(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.materials.ListForTeacher(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// TestAssignments godoc
// @Summary Onboarding tests assigned to the teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/tests [get]
func (h *TeacherHandler) TestAssignments(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.teachers.TestAssignments(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ContractSheet godoc
// @Summary Contract cover page PDF
// @Tags Teachers
// @Produce application/pdf
// @Param id path string true "Teacher ID"
// @Success 200 {file} binary
// @Router /teachers/{id}/contract [get]
func (h *TeacherHandler) ContractSheet(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.contracts.RenderSheet(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="contract.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// LanguageForStudent godoc
// @Summary Language shared between the teacher and a student
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/students/{student_id}/language [get]
func (h *TeacherHandler) LanguageForStudent(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	language, err := h.teachers.LanguageForStudent(c.Request.Context(), teacher, c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"language": language}, nil)
}
