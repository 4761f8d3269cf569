package approvals

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/auth"
	"github.com/buildhub-th/procure-backend/internal/logging"
)

type Approver interface {
	Approve(ctx context.Context, uid, rawType, id string) (*Result, error)
	Preview(ctx context.Context, uid, rawType, id string) (*Result, error)
}

type Handler struct {
	approvals Approver
}

func NewHandler(approvals Approver) *Handler {
	return &Handler{approvals: approvals}
}

func (h *Handler) Register(rg *gin.RouterGroup, signedIn gin.HandlerFunc) {
	g := rg.Group("/approvals", signedIn)
	g.GET("/:type/:id", h.preview)
	g.POST("/:type/:id", h.approve)
}

func (h *Handler) preview(c *gin.Context) {
	res, err := h.approvals.Preview(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("type"), strings.TrimSpace(c.Param("id")))
	h.write(c, res, err)
}

func (h *Handler) approve(c *gin.Context) {
	res, err := h.approvals.Approve(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("type"), strings.TrimSpace(c.Param("id")))
	h.write(c, res, err)
}

// RejectSession renders a missing or invalid session in the same shape as
// the other approval states so the LIFF page can send the user to sign in.
func RejectSession(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"state":    StateUnauthorized,
		"error":    message,
		"redirect": BindRedirect,
	})
}

// write renders every state as a body the LIFF page can show directly.
func (h *Handler) write(c *gin.Context, res *Result, err error) {
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}
	status := httpapi.StatusFor(apperrors.KindOf(err))
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("approval request failed", zap.Error(err))
	}
	body := gin.H{"state": res.State, "error": res.Message}
	if res.Redirect != "" {
		body["redirect"] = res.Redirect
	}
	c.AbortWithStatusJSON(status, body)
}
