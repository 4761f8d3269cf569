package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Firebase  FirebaseConfig
	Redis     RedisConfig
	Line      LineConfig
	Outbox    OutboxConfig
	Audit     AuditConfig
	Log       LogConfig
	Tracing   TracingConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LineConfig holds the LINE Login channel used to verify LIFF ID tokens (ES256
// against JWKSURL, or HS256 with the channel secret) and
// the Messaging API push endpoint. The channel access token and push target
// live in Firestore (system_settings/line_integration) so admins can rotate them.
type LineConfig struct {
	ChannelID      string
	ChannelSecret  string
	JWKSURL        string
	RequireIDToken bool
	PushEndpoint   string
	Timeout        time.Duration
	PushRatePerSec float64
	PushBurst      int
}

type OutboxConfig struct {
	Enabled     bool
	Schedule    string
	BatchSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	LockTTL     time.Duration
}

type AuditConfig struct {
	DSN string
}

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRate  float64
	ServiceName string
}

// RateLimitConfig uses the ulule/limiter formatted rate ("20-M" = 20 per minute).
type RateLimitConfig struct {
	BridgeRate string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AppConfig struct {
	Environment string
	Version     string
	ServiceName string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
			ProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Line: LineConfig{
			ChannelID:      v.GetString("LINE_CHANNEL_ID"),
			ChannelSecret:  v.GetString("LINE_CHANNEL_SECRET"),
			JWKSURL:        v.GetString("LINE_JWKS_URL"),
			RequireIDToken: v.GetBool("LINE_REQUIRE_ID_TOKEN"),
			PushEndpoint:   v.GetString("LINE_PUSH_ENDPOINT"),
			Timeout:        v.GetDuration("LINE_TIMEOUT"),
			PushRatePerSec: v.GetFloat64("LINE_PUSH_RATE"),
			PushBurst:      v.GetInt("LINE_PUSH_BURST"),
		},
		Outbox: OutboxConfig{
			Enabled:     v.GetBool("OUTBOX_ENABLED"),
			Schedule:    v.GetString("OUTBOX_SCHEDULE"),
			BatchSize:   v.GetInt("OUTBOX_BATCH_SIZE"),
			MaxAttempts: v.GetInt("OUTBOX_MAX_ATTEMPTS"),
			BaseBackoff: v.GetDuration("OUTBOX_BASE_BACKOFF"),
			MaxBackoff:  v.GetDuration("OUTBOX_MAX_BACKOFF"),
			LockTTL:     v.GetDuration("OUTBOX_LOCK_TTL"),
		},
		Audit: AuditConfig{
			DSN: v.GetString("AUDIT_DB_DSN"),
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Format:   v.GetString("LOG_FORMAT"),
			Output:   v.GetString("LOG_OUTPUT"),
			FilePath: v.GetString("LOG_FILE_PATH"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    v.GetBool("OTEL_INSECURE"),
			SampleRate:  v.GetFloat64("OTEL_SAMPLE_RATE"),
			ServiceName: v.GetString("SERVICE_NAME"),
		},
		RateLimit: RateLimitConfig{
			BridgeRate: v.GetString("BRIDGE_RATE_LIMIT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		App: AppConfig{
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
			ServiceName: v.GetString("SERVICE_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LINE_JWKS_URL", "https://api.line.me/oauth2/v2.1/certs")
	v.SetDefault("LINE_REQUIRE_ID_TOKEN", false)
	v.SetDefault("LINE_PUSH_ENDPOINT", "https://api.line.me/v2/bot/message/push")
	v.SetDefault("LINE_TIMEOUT", "10s")
	v.SetDefault("LINE_PUSH_RATE", 10.0)
	v.SetDefault("LINE_PUSH_BURST", 5)
	v.SetDefault("OUTBOX_ENABLED", true)
	v.SetDefault("OUTBOX_SCHEDULE", "@every 15s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 20)
	v.SetDefault("OUTBOX_MAX_ATTEMPTS", 8)
	v.SetDefault("OUTBOX_BASE_BACKOFF", "30s")
	v.SetDefault("OUTBOX_MAX_BACKOFF", "1h")
	v.SetDefault("OUTBOX_LOCK_TTL", "2m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE_PATH", "logs/procure-backend.log")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_INSECURE", true)
	v.SetDefault("OTEL_SAMPLE_RATE", 1.0)
	v.SetDefault("BRIDGE_RATE_LIMIT", "30-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("SERVICE_NAME", "procure-backend")
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Firebase.CredentialsPath == "" && c.Firebase.ProjectID == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH or FIREBASE_PROJECT_ID is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.Line.RequireIDToken && c.Line.ChannelID == "" {
		return fmt.Errorf("LINE_CHANNEL_ID is required when LINE_REQUIRE_ID_TOKEN is set")
	}

	if c.Outbox.MaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
