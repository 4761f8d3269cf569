package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/logging"
)

var keepAliveInterval = 15 * time.Second

// stream sends project change events as Server-Sent Events. Clients fold
// them into their own cache and re-query the snapshot endpoints as needed.
func (h *Handler) stream(c *gin.Context) {
	projectID := c.Param("id")
	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	ch, stop, err := h.events.Subscribe(ctx, projectID)
	if err != nil {
		logging.FromContext(ctx).Error("subscribe failed", zap.String("project_id", projectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe to project events"})
		return
	}
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	initial, _ := json.Marshal(gin.H{"project": project})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
