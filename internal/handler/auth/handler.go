package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/endosim/pk-api/internal/handler"
	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/service/token"
)

type Handler struct {
	svc token.Servicer
}

func NewHandler(svc token.Servicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/token", h.IssueToken)
	}
}

func (h *Handler) IssueToken(c *gin.Context) {
	var req model.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.svc.IssueToken(c.Request.Context(), req.APIKey)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}
