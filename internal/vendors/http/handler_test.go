package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/buildhub-th/procure-backend/internal/vendors/domain"
)

type memVendors map[string]*domain.Vendor

func (m memVendors) Get(_ context.Context, id string) (*domain.Vendor, error) {
	if v, ok := m[id]; ok {
		return v, nil
	}
	return nil, domain.ErrVendorNotFound
}

func (m memVendors) List(context.Context) ([]*domain.Vendor, error) {
	out := make([]*domain.Vendor, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out, nil
}

func TestVendorRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(memVendors{"v1": {ID: "v1", Name: "Siam Supply"}}).Register(r.Group("/api"), func(c *gin.Context) { c.Next() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vendors", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Siam Supply")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vendors/v1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vendors/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"vendor not found"}`, w.Body.String())
}

func TestFromMapAndCardData(t *testing.T) {
	v := domain.FromMap("v1", map[string]any{"name": "A", "phone": "02-111", "mapUrl": "https://m", "taxId": "010"})
	assert.Equal(t, "010", v.TaxID)
	assert.Equal(t, map[string]any{"name": "A", "contactName": "", "phone": "02-111", "address": "", "mapUrl": "https://m"}, v.CardData())
}
