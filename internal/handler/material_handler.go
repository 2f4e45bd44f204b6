package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaportal/staff-api/internal/service"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
	"github.com/linguaportal/staff-api/pkg/response"
)

// MaterialHandler serves signed coursebook downloads and uploaded materials.
type MaterialHandler struct {
	materials *service.MaterialsService
}

// NewMaterialHandler constructs a new MaterialHandler.
func NewMaterialHandler(materials *service.MaterialsService) *MaterialHandler {
	return &MaterialHandler{materials: materials}
}

// Download godoc
// @Summary Download a coursebook template
// @Tags Materials
// @Produce application/pdf
// @Param code path string true "Material directory code"
// @Param file path string true "File name"
// @Param sign query string true "Signed download token"
// @Success 200 {file} binary
// @Router /materials/ru/{code}/{file} [get]
func (h *MaterialHandler) Download(c *gin.Context) {
	sign := c.Query("sign")
	if sign == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidToken, "missing download token"))
		return
	}
	content, size, err := h.materials.OpenBasicMaterial(c.Param("code"), c.Param("file"), sign)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() { _ = content.Close() }()
	c.DataFromReader(http.StatusOK, size, "application/pdf", content, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, c.Param("file")),
	})
}

// Get godoc
// @Summary Get an uploaded material
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Router /teacher-materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	view, err := h.materials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
