package linebridge

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/apperrors"
)

type Bridge interface {
	Exchange(ctx context.Context, lineUserID, idToken string) (string, error)
	Bind(ctx context.Context, req BindRequest) (*BindResult, error)
}

type Handler struct {
	bridge Bridge
}

func NewHandler(bridge Bridge) *Handler {
	return &Handler{bridge: bridge}
}

// Register mounts the public bridge endpoints. Both are unauthenticated, so
// callers pass a rate limiter.
func (h *Handler) Register(authGroup, usersGroup *gin.RouterGroup, limit gin.HandlerFunc) {
	authGroup.POST("/line-login", limit, h.lineLogin)
	usersGroup.POST("/bind-line", limit, h.bindLine)
}

type lineLoginReq struct {
	LineUserID string `json:"lineUserId"`
	IDToken    string `json:"idToken"`
}

func (h *Handler) lineLogin(c *gin.Context) {
	var req lineLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.bridge.Exchange(c.Request.Context(), req.LineUserID, req.IDToken)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customToken": token})
}

type bindLineReq struct {
	PhoneNumber    string  `json:"phoneNumber"`
	LineUserID     string  `json:"lineUserId"`
	LineProfilePic *string `json:"lineProfilePic"`
	IDToken        string  `json:"idToken"`
}

func (h *Handler) bindLine(c *gin.Context) {
	var req bindLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.bridge.Bind(c.Request.Context(), BindRequest{
		PhoneNumber: req.PhoneNumber,
		LineUserID:  req.LineUserID,
		LinePic:     req.LineProfilePic,
		IDToken:     req.IDToken,
	})
	if err != nil {
		// Binding conflicts are reported as 403 to the LIFF client.
		if apperrors.IsKind(err, apperrors.KindConflict) {
			httpapi.ErrorWithStatus(c, http.StatusForbidden, err)
			return
		}
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uid": res.UID, "customToken": res.CustomToken})
}
