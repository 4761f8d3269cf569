package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpapi "github.com/buildhub-th/procure-backend/internal/api/http"
	"github.com/buildhub-th/procure-backend/internal/api/http/middleware"
	"github.com/buildhub-th/procure-backend/internal/approvals"
	authmw "github.com/buildhub-th/procure-backend/internal/auth/middleware"
	"github.com/buildhub-th/procure-backend/internal/linebridge"
	"github.com/buildhub-th/procure-backend/internal/notify"
	projecthttp "github.com/buildhub-th/procure-backend/internal/projects/http"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
	userhttp "github.com/buildhub-th/procure-backend/internal/users/http"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
	vendorhttp "github.com/buildhub-th/procure-backend/internal/vendors/http"
)

func BuildRouter(a *App) (*gin.Engine, error) {
	cfg := a.Config
	if err := httpapi.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.App.ServiceName))
	r.Use(middleware.RequestIDMiddleware(a.Log))
	r.Use(a.Metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version, map[string]httpapi.Check{
		"firestore": a.firestoreCheck,
		"redis": func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		},
	})
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	lim, err := middleware.NewRedisLimiter(a.Redis, cfg.RateLimit.BridgeRate)
	if err != nil {
		return nil, err
	}
	limit := middleware.RateLimit(lim)

	signedIn := authmw.FirebaseAuthMiddleware(a.Auth)
	admin := authmw.RequireRole(a.Profiles, domain.RoleAdmin)

	api := r.Group("/api")
	usersGroup := api.Group("/users")

	linebridge.NewHandler(a.Bridge).Register(api.Group("/auth"), usersGroup, limit)
	userhttp.New(a.Users).Register(usersGroup, signedIn, admin)
	approvals.NewHandler(a.Approvals).Register(api, authmw.FirebaseAuthMiddleware(a.Auth, authmw.WithReject(approvals.RejectSession)))
	notify.NewHandler(a.Notifier).Register(api, signedIn)
	projecthttp.New(a.ProjectService, a.Events).Register(api, signedIn, admin)
	vendorhttp.New(a.Vendors).Register(api, signedIn)

	return r, nil
}

// firestoreCheck reads the global config document; a missing document still
// proves the backend answered.
func (a *App) firestoreCheck(ctx context.Context) error {
	_, err := a.Firestore.Collection(fs.CollectionSystemSettings).Doc(fs.DocGlobalConfig).Get(ctx)
	if err != nil && !fs.IsNotFound(err) {
		return err
	}
	return nil
}
