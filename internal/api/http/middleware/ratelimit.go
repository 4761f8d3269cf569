package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/logging"
)

// NewRedisLimiter builds a limiter shared across API replicas. rate uses the
// limiter format, e.g. "30-M".
func NewRedisLimiter(client *redis.Client, rate string) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "procure:ratelimit",
	})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, r), nil
}

// RateLimit limits requests per client IP.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		log := logging.FromContext(c.Request.Context())

		lctx, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			log.Error("rate limit check failed", zap.String("ip", ip), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		if lctx.Reached {
			log.Warn("rate limit exceeded", zap.String("ip", ip), zap.Int64("limit", lctx.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
