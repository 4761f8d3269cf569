package approvals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildhub-th/procure-backend/internal/auth"
	authmw "github.com/buildhub-th/procure-backend/internal/auth/middleware"
)

func newRouter(svc *Service, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	signedIn := func(c *gin.Context) {
		c.Set(auth.CtxFirebaseUID, uid)
		c.Next()
	}
	NewHandler(svc).Register(r.Group("/api"), signedIn)
	return r
}

func do(r http.Handler, method, path string) (int, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestApproveEndpoint(t *testing.T) {
	svc := NewService(profiles(), newDocs(pendingPO()), nil, nil, nil)

	code, body := do(newRouter(svc, "pm"), http.MethodPost, "/api/approvals/po/po-1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["state"])
	assert.Equal(t, false, body["alreadyApproved"])

	code, body = do(newRouter(svc, "pm"), http.MethodPost, "/api/approvals/po/po-1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["alreadyApproved"])
}

func TestApproveEndpoint_Failures(t *testing.T) {
	svc := NewService(profiles(), newDocs(pendingPO()), nil, nil, nil)

	code, body := do(newRouter(svc, "ghost"), http.MethodPost, "/api/approvals/po/po-1")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["state"])
	assert.Equal(t, BindRedirect, body["redirect"])

	code, body = do(newRouter(svc, "eng"), http.MethodPost, "/api/approvals/po/po-1")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "unauthorized", body["state"])
	assert.NotContains(t, body, "redirect")

	code, body = do(newRouter(svc, "pm"), http.MethodPost, "/api/approvals/xyz/po-1")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body["state"])

	code, _ = do(newRouter(svc, "pm"), http.MethodPost, "/api/approvals/po/missing")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPreviewEndpoint(t *testing.T) {
	svc := NewService(profiles(), newDocs(pendingPO()), nil, nil, nil)

	code, body := do(newRouter(svc, "admin"), http.MethodGet, "/api/approvals/po/po-1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["state"])
	doc, ok := body["document"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "po-1", doc["id"])
}

type tokenUIDs map[string]string

func (m tokenUIDs) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	if uid, ok := m[token]; ok {
		return &fbauth.Token{UID: uid}, nil
	}
	return nil, errors.New("bad token")
}

func TestApproveEndpoint_WithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(profiles(), newDocs(pendingPO()), nil, nil, nil)
	r := gin.New()
	signedIn := authmw.FirebaseAuthMiddleware(tokenUIDs{"pm-token": "pm"}, authmw.WithReject(RejectSession))
	NewHandler(svc).Register(r.Group("/api"), signedIn)

	for _, header := range []string{"", "Bearer expired"} {
		req := httptest.NewRequest(http.MethodPost, "/api/approvals/po/po-1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, "unauthorized", body["state"], header)
		assert.Equal(t, BindRedirect, body["redirect"], header)
		assert.NotEmpty(t, body["error"], header)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/approvals/po/po-1", nil)
	req.Header.Set("Authorization", "Bearer pm-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"success"`)
}
