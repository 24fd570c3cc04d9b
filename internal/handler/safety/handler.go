package safety

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/endosim/pk-api/internal/catalog"
	"github.com/endosim/pk-api/internal/handler"
	"github.com/endosim/pk-api/internal/model"
	safetyService "github.com/endosim/pk-api/internal/service/safety"
)

type Handler struct {
	service safetyService.Servicer
}

func NewHandler(service safetyService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	analysis := r.Group("/analysis")
	{
		analysis.POST("/safety", h.AnalyzeSafety)
	}
	r.GET("/guidelines", h.GetGuidelines)
}

func (h *Handler) AnalyzeSafety(c *gin.Context) {
	var req model.SafetyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

// GetGuidelines serves the published reference set. The data is
// compiled in, so no service round trip is needed.
func (h *Handler) GetGuidelines(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(catalog.Guidelines()))
}
