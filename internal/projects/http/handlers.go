package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/auth"
	docdomain "github.com/buildhub-th/procure-backend/internal/documents/domain"
	"github.com/buildhub-th/procure-backend/internal/events"
	"github.com/buildhub-th/procure-backend/internal/projects/domain"
)

type ProjectService interface {
	List(ctx context.Context) ([]*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Documents(ctx context.Context, projectID, rawType string) ([]*docdomain.Document, error)
	Delete(ctx context.Context, actorUID, id string, force bool) (int, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, projectID string) (<-chan events.Event, func(), error)
}

type Handler struct {
	projects ProjectService
	events   Subscriber
}

func New(projects ProjectService, sub Subscriber) *Handler {
	return &Handler{projects: projects, events: sub}
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context())
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

func (h *Handler) documents(c *gin.Context) {
	docType := c.DefaultQuery("type", string(docdomain.TypePO))
	docs, err := h.projects.Documents(c.Request.Context(), c.Param("id"), docType)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "documents": docs})
}

func (h *Handler) delete(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))
	orphaned, err := h.projects.Delete(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), force)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orphanedDocuments": orphaned})
}
