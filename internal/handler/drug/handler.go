package drug

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/endosim/pk-api/internal/handler"
	"github.com/endosim/pk-api/internal/model"
	drugService "github.com/endosim/pk-api/internal/service/drug"
)

type Handler struct {
	service drugService.Servicer
}

func NewHandler(service drugService.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the drug routes. The mutating routes run
// behind adminAuth; reads are open.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, adminAuth gin.HandlerFunc) {
	drugs := r.Group("/drugs")
	{
		drugs.GET("", h.ListDrugs)
		drugs.GET("/:name", h.GetDrug)
		drugs.PUT("/:name", adminAuth, h.UpsertDrug)
		drugs.DELETE("/:name", adminAuth, h.DeleteDrug)
	}
}

func (h *Handler) ListDrugs(c *gin.Context) {
	route := model.RouteType(c.Query("route"))
	if route != "" && !route.Valid() {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unknown route type"))
		return
	}

	drugs, err := h.service.List(c.Request.Context(), route)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(drugs))
}

func (h *Handler) GetDrug(c *gin.Context) {
	drug, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(drug))
}

func (h *Handler) UpsertDrug(c *gin.Context) {
	var req model.UpsertDrugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	drug, err := h.service.Upsert(c.Request.Context(), c.Param("name"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(drug))
}

func (h *Handler) DeleteDrug(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
