package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
)

type phoneReq struct {
	PhoneNumber string `json:"phoneNumber" binding:"required,phone"`
}

func TestPhoneValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req phoneReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": BindingMessage(err)})
			return
		}
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body)))
		return w
	}

	assert.Equal(t, http.StatusNoContent, post(`{"phoneNumber":"+66 81 234 5678"}`).Code)

	w := post(`{"phoneNumber":"12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "9 to 10 digits")

	w = post(`{}`)
	assert.Contains(t, w.Body.String(), "phoneNumber is required")
}

func TestErrorWriter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.BadRequest("bad"), http.StatusBadRequest},
		{apperrors.NotFound("User not linked"), http.StatusNotFound},
		{apperrors.Conflict("taken"), http.StatusConflict},
		{apperrors.Unauthorized("nope"), http.StatusUnauthorized},
		{apperrors.Forbidden("nope"), http.StatusForbidden},
		{apperrors.Dispatch("rejected", gin.H{"message": "invalid token"}), http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		Error(c, tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Error(c, apperrors.NotFound("User not linked"))
	assert.JSONEq(t, `{"error":"User not linked"}`, w.Body.String())
}
