package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/vendors/domain"
)

type VendorReader interface {
	Get(ctx context.Context, id string) (*domain.Vendor, error)
	List(ctx context.Context) ([]*domain.Vendor, error)
}

type Handler struct {
	vendors VendorReader
}

func New(vendors VendorReader) *Handler {
	return &Handler{vendors: vendors}
}

// Register attaches vendor routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, signedIn gin.HandlerFunc) {
	g := rg.Group("/vendors", signedIn)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.vendors.List(c.Request.Context())
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendors": items})
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.vendors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendor": v})
}
