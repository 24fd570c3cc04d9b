package simulation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/endosim/pk-api/internal/handler"
	"github.com/endosim/pk-api/internal/model"
	simulationService "github.com/endosim/pk-api/internal/service/simulation"
)

type Handler struct {
	service simulationService.Servicer
}

func NewHandler(service simulationService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/simulations", h.Simulate)
}

func (h *Handler) Simulate(c *gin.Context) {
	var req model.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Simulate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
