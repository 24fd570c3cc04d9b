package calibration

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/endosim/pk-api/internal/handler"
	"github.com/endosim/pk-api/internal/model"
	calibrationService "github.com/endosim/pk-api/internal/service/calibration"
)

type Handler struct {
	service calibrationService.Servicer
}

func NewHandler(service calibrationService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	calibrations := r.Group("/calibrations")
	{
		calibrations.POST("/estimate", h.Estimate)
		calibrations.POST("/weighted", h.EstimateWeighted)
	}
}

func (h *Handler) Estimate(c *gin.Context) {
	var req model.EstimateCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	estimate, err := h.service.Estimate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(estimate))
}

func (h *Handler) EstimateWeighted(c *gin.Context) {
	var req model.WeightedCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	estimate, err := h.service.EstimateWeighted(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(estimate))
}
