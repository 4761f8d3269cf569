package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/auth"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

type UserService interface {
	Create(ctx context.Context, actorUID string, in domain.CreateProfile) (string, error)
	Delete(ctx context.Context, actorUID, uid string) error
	Get(ctx context.Context, uid string) (*domain.UserProfile, error)
	List(ctx context.Context) ([]*domain.UserProfile, error)
	Update(ctx context.Context, actorUID, uid string, upd domain.UpdateProfile) (*domain.UserProfile, error)
	UnlinkLine(ctx context.Context, actorUID, uid string) error
}

type Handler struct {
	users UserService
}

func New(users UserService) *Handler {
	return &Handler{users: users}
}

// Register attaches the user administration routes. signedIn verifies the
// Firebase session; admin additionally requires the admin role.
func (h *Handler) Register(rg *gin.RouterGroup, signedIn, admin gin.HandlerFunc) {
	rg.GET("/me", signedIn, h.me)

	adm := rg.Group("", signedIn, admin)
	adm.POST("", h.create)
	adm.GET("", h.list)
	adm.PATCH("/:id", h.update)
	adm.DELETE("/:id", h.delete)
	adm.DELETE("/:id/line", h.unlinkLine)
}

type createReq struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,phone"`
}

// create answers 400 for every failure, including store errors.
func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": httpapi.BindingMessage(err)})
		return
	}

	uid, err := h.users.Create(c.Request.Context(), auth.UserFirebaseUID(c), domain.CreateProfile{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		httpapi.ErrorWithStatus(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "uid": uid})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id")); err != nil {
		httpapi.ErrorWithStatus(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) me(c *gin.Context) {
	p, err := h.users.Get(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.users.List(c.Request.Context())
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": items})
}

type updateReq struct {
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"isActive"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	upd := domain.UpdateProfile{
		DisplayName: req.DisplayName,
		IsActive:    req.IsActive,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		upd.Role = &r
	}

	p, err := h.users.Update(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), upd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": p})
}

func (h *Handler) unlinkLine(c *gin.Context) {
	if err := h.users.UnlinkLine(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id")); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
