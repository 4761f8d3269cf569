package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/buildhub-th/procure-backend/internal/auth"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	uid, ok := f[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &fbauth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
}

type fakeProfiles map[string]*domain.UserProfile

func (f fakeProfiles) GetByUID(_ context.Context, uid string) (*domain.UserProfile, error) {
	if p, ok := f[uid]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		role := ""
		if p := auth.Profile(c); p != nil {
			role = string(p.Role)
		}
		c.JSON(http.StatusOK, gin.H{"uid": auth.UserFirebaseUID(c), "role": role})
	})
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	r := newRouter(FirebaseAuthMiddleware(fakeVerifier{"good": "uid-1"}))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "bad").Code)

	w := do(r, "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"uid-1"`)
}

func TestFirebaseAuthMiddleware_WithReject(t *testing.T) {
	var messages []string
	reject := func(c *gin.Context, message string) {
		messages = append(messages, message)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"state": "unauthorized"})
	}
	r := newRouter(FirebaseAuthMiddleware(fakeVerifier{"good": "uid-1"}, WithReject(reject)))

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"state":"unauthorized"}`, w.Body.String())

	w = do(r, "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []string{"missing authorization token", "invalid token"}, messages)

	assert.Equal(t, http.StatusOK, do(r, "good").Code)
}

func TestRequireRole(t *testing.T) {
	verifier := fakeVerifier{"admin": "a", "eng": "e", "off": "o", "ghost": "g"}
	profiles := fakeProfiles{
		"a": {UID: "a", Role: domain.RoleAdmin, IsActive: true},
		"e": {UID: "e", Role: domain.RoleEngineer, IsActive: true},
		"o": {UID: "o", Role: domain.RoleAdmin, IsActive: false},
	}
	r := newRouter(FirebaseAuthMiddleware(verifier), RequireRole(profiles, domain.RoleAdmin))

	w := do(r, "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	assert.Equal(t, http.StatusForbidden, do(r, "eng").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "off").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "ghost").Code)
}

func TestRequireRole_AnyActiveProfile(t *testing.T) {
	profiles := fakeProfiles{"e": {UID: "e", Role: domain.RoleEngineer, IsActive: true}}
	r := newRouter(FirebaseAuthMiddleware(fakeVerifier{"eng": "e"}), RequireRole(profiles))

	assert.Equal(t, http.StatusOK, do(r, "eng").Code)
}
