package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, signedIn, admin gin.HandlerFunc) {
	g := rg.Group("/projects", signedIn)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/:id/documents", h.documents)
	g.GET("/:id/events", h.stream)
	g.DELETE("/:id", admin, h.delete)
}
