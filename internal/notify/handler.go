package notify

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
)

type Notifier interface {
	Notify(ctx context.Context, req Request) (*Result, error)
}

type Handler struct {
	notifier Notifier
}

func NewHandler(notifier Notifier) *Handler {
	return &Handler{notifier: notifier}
}

func (h *Handler) Register(rg *gin.RouterGroup, signedIn gin.HandlerFunc) {
	rg.POST("/line/notify", signedIn, h.notify)
}

type notifyReq struct {
	Type        string         `json:"type" binding:"required"`
	DocID       string         `json:"docId"`
	Data        map[string]any `json:"data" binding:"required"`
	VendorData  map[string]any `json:"vendorData"`
	ProjectName string         `json:"projectName"`
}

func (h *Handler) notify(c *gin.Context) {
	var req notifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": httpapi.BindingMessage(err)})
		return
	}

	res, err := h.notifier.Notify(c.Request.Context(), Request{
		Type:        req.Type,
		DocID:       req.DocID,
		Data:        req.Data,
		Vendor:      req.VendorData,
		ProjectName: req.ProjectName,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
