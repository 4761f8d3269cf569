// Package audit keeps an append-only trail of identity and approval actions.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/logging"
)

const (
	EventLineLogin        = "line.login"
	EventLineBound        = "line.bound"
	EventDocumentApproved = "document.approved"
	EventUserCreated      = "user.created"
	EventUserDeleted      = "user.deleted"
	EventUserUpdated      = "user.updated"
	EventUserLineUnlinked = "user.line_unlinked"
	EventProjectDeleted   = "project.deleted"
	EventNotificationSent = "notification.sent"
)

type Event struct {
	ID        string
	Type      string
	ActorUID  string
	Subject   string
	RequestID string
	Details   map[string]any
	CreatedAt time.Time
}

// Recorder is best-effort: a failed write is logged and never fails the
// action being audited.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// LogRecorder writes events to the structured log. Used when no audit
// database is configured.
type LogRecorder struct{}

func (LogRecorder) Record(ctx context.Context, e Event) {
	logging.FromContext(ctx).Info("audit",
		zap.String("event", e.Type),
		zap.String("actor_uid", e.ActorUID),
		zap.String("subject", e.Subject),
		zap.Any("details", e.Details),
	)
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
