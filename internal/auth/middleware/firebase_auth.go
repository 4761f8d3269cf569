package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/auth"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

// TokenVerifier is satisfied by *auth.Client from the Firebase SDK.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type ProfileGetter interface {
	GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error)
}

// RejectFunc writes the response for a request without a usable session.
type RejectFunc func(c *gin.Context, message string)

type Option func(*options)

type options struct {
	reject RejectFunc
}

// WithReject replaces the default {"error": ...} 401 body.
func WithReject(fn RejectFunc) Option {
	return func(o *options) { o.reject = fn }
}

func defaultReject(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier, opts ...Option) gin.HandlerFunc {
	o := options{reject: defaultReject}
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			o.reject(c, "missing authorization token")
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logging.FromContext(c.Request.Context()).Debug("id token rejected", zap.Error(err))
			o.reject(c, "invalid token")
			return
		}

		c.Set(auth.CtxFirebaseUID, decoded.UID)
		if email, ok := decoded.Claims["email"].(string); ok {
			c.Set(auth.CtxEmail, email)
		}

		c.Next()
	}
}

// RequireRole loads the caller's profile and rejects inactive accounts and
// roles outside the allowed set. With no roles given any active profile
// passes. Must run after FirebaseAuthMiddleware.
func RequireRole(profiles ProfileGetter, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := auth.UserFirebaseUID(c)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		profile, err := profiles.GetByUID(c.Request.Context(), uid)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no profile for this account"})
				return
			}
			logging.FromContext(c.Request.Context()).Error("load profile", zap.String("uid", uid), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		if !profile.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}
		if len(roles) > 0 && !hasRole(profile.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		auth.SetProfile(c, profile)
		c.Next()
	}
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
