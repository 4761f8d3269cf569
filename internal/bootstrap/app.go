// Package bootstrap wires configuration, clients and services into the HTTP
// router and the worker commands.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/firestore"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/MicahParks/keyfunc"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/approvals"
	"github.com/buildhub-th/procure-backend/internal/audit"
	"github.com/buildhub-th/procure-backend/internal/auth"
	docrepo "github.com/buildhub-th/procure-backend/internal/documents/repository"
	"github.com/buildhub-th/procure-backend/internal/events"
	"github.com/buildhub-th/procure-backend/internal/linebridge"
	"github.com/buildhub-th/procure-backend/internal/metrics"
	"github.com/buildhub-th/procure-backend/internal/notify"
	"github.com/buildhub-th/procure-backend/internal/outbox"
	outboxrepo "github.com/buildhub-th/procure-backend/internal/outbox/repository"
	projectrepo "github.com/buildhub-th/procure-backend/internal/projects/repository"
	projectsvc "github.com/buildhub-th/procure-backend/internal/projects/service"
	userrepo "github.com/buildhub-th/procure-backend/internal/users/repository"
	usersvc "github.com/buildhub-th/procure-backend/internal/users/service"
	vendorrepo "github.com/buildhub-th/procure-backend/internal/vendors/repository"
)

// App holds every long-lived dependency of the process.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Firestore *firestore.Client
	Auth      *fbauth.Client
	Redis     *redis.Client
	AuditDB   *sql.DB
	Audit     audit.Recorder
	Metrics   *metrics.Metrics
	Events    *events.Bus
	LineKeys  *keyfunc.JWKS

	Profiles  *userrepo.ProfileRepository
	Documents *docrepo.DocumentRepository
	Vendors   *vendorrepo.VendorRepository
	Projects  *projectrepo.ProjectRepository
	Outbox    *outboxrepo.OutboxRepository

	Users          *usersvc.UserService
	Bridge         *linebridge.Service
	Approvals      *approvals.Service
	Notifier       *notify.Service
	ProjectService *projectsvc.ProjectService
	Dispatcher     *outbox.Dispatcher
}

// NewApp connects to Firebase, Firestore, Redis and (optionally) the audit
// database, then builds repositories and services on top of them.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	fbApp, err := auth.InitializeFirebase(ctx, cfg.Firebase)
	if err != nil {
		return nil, err
	}
	authClient, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	fsClient, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	rdb, err := OpenRedis(ctx, cfg.Redis)
	if err != nil {
		_ = fsClient.Close()
		return nil, err
	}

	rec, auditDB, err := OpenAudit(ctx, cfg.Audit, log)
	if err != nil {
		_ = fsClient.Close()
		_ = rdb.Close()
		return nil, err
	}

	var lineKeys *keyfunc.JWKS
	if cfg.Line.ChannelID != "" {
		lineKeys, err = auth.LoadLineKeys(ctx, cfg.Line.JWKSURL, &http.Client{Timeout: cfg.Line.Timeout}, log)
		if err != nil {
			_ = fsClient.Close()
			_ = rdb.Close()
			if auditDB != nil {
				_ = auditDB.Close()
			}
			return nil, err
		}
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		Firestore: fsClient,
		Auth:      authClient,
		Redis:     rdb,
		AuditDB:   auditDB,
		Audit:     rec,
		Metrics:   metrics.New(),
		Events:    events.NewBus(rdb),
		LineKeys:  lineKeys,
		Profiles:  userrepo.NewProfileRepository(fsClient),
		Documents: docrepo.NewDocumentRepository(fsClient),
		Vendors:   vendorrepo.NewVendorRepository(fsClient),
		Projects:  projectrepo.NewProjectRepository(fsClient),
		Outbox:    outboxrepo.NewOutboxRepository(fsClient),
	}
	a.buildServices()
	return a, nil
}

func (a *App) buildServices() {
	cfg := a.Config

	var verifier linebridge.IDTokenVerifier
	if a.LineKeys != nil {
		verifier = auth.NewLineIDVerifier(cfg.Line.ChannelID, cfg.Line.ChannelSecret, a.LineKeys)
	}
	identity := auth.NewFirebaseIdentity(a.Auth)

	a.Users = usersvc.NewUserService(identity, a.Profiles, a.Audit)
	a.Bridge = linebridge.NewService(a.Profiles, identity, linebridge.Options{
		Verifier:       verifier,
		RequireIDToken: cfg.Line.RequireIDToken,
		Audit:          a.Audit,
		Metrics:        a.Metrics,
	})
	a.Approvals = approvals.NewService(a.Profiles, a.Documents, a.Events, a.Audit, a.Metrics)
	a.Notifier = notify.NewService(notify.NewSettingsRepository(a.Firestore), notify.NewClient(cfg.Line), a.Audit, a.Metrics)
	a.ProjectService = projectsvc.NewProjectService(a.Projects, a.Documents, a.Events, a.Audit)
	a.Dispatcher = outbox.NewDispatcher(outbox.Deps{
		Store:     a.Outbox,
		Locker:    outbox.NewRedisLocker(a.Redis),
		Documents: a.Documents,
		Vendors:   a.Vendors,
		Projects:  a.Projects,
		Notifier:  a.Notifier,
		Metrics:   a.Metrics,
	}, cfg.Outbox)
}

// Close releases every client opened by NewApp.
func (a *App) Close() error {
	var errs []error
	if a.LineKeys != nil {
		a.LineKeys.EndBackground()
	}
	if err := a.Firestore.Close(); err != nil {
		errs = append(errs, fmt.Errorf("firestore: %w", err))
	}
	if err := a.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if a.AuditDB != nil {
		if err := a.AuditDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit db: %w", err))
		}
	}
	return errors.Join(errs...)
}
