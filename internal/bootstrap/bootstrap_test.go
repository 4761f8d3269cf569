package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/audit"
)

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := OpenRedis(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	mr.Close()
	_, err = OpenRedis(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestOpenAudit_WithoutDSNLogsOnly(t *testing.T) {
	rec, db, err := OpenAudit(context.Background(), config.AuditConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.IsType(t, audit.LogRecorder{}, rec)
}

func TestSetGinMode(t *testing.T) {
	defer gin.SetMode(gin.TestMode)

	SetGinMode("production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())
}
