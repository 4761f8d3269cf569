package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/logging"
)

// StatusFor maps an error kind to its default HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindBadRequest, apperrors.KindDispatch:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"error": msg} (plus "details" when present) with the status
// for err's kind.
func Error(c *gin.Context, err error) {
	ErrorWithStatus(c, StatusFor(apperrors.KindOf(err)), err)
}

// ErrorWithStatus is Error with an endpoint-specific status override.
func ErrorWithStatus(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	body := gin.H{"error": apperrors.Message(err)}
	if d := apperrors.DetailsOf(err); d != nil {
		body["details"] = d
	}
	c.AbortWithStatusJSON(status, body)
}
