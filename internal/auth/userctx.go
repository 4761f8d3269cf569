package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

// SetProfile stores the caller's profile once RequireRole has loaded it.
func SetProfile(c *gin.Context, p *domain.UserProfile) {
	c.Set(CtxProfile, p)
}

// Profile returns the profile loaded by RequireRole, or nil.
func Profile(c *gin.Context) *domain.UserProfile {
	v, ok := c.Get(CtxProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*domain.UserProfile)
	return p
}
