// Package notify renders approval cards and pushes them to the configured
// LINE group or user.
package notify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/audit"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/metrics"
)

const MessageDisabled = "LINE integration is disabled or token missing"

type SettingsLoader interface {
	Load(ctx context.Context) (*Settings, error)
}

type Pusher interface {
	Push(ctx context.Context, token, to string, messages []Message, retryKey string) error
}

type Request struct {
	Type        string
	DocID       string
	Data        map[string]any
	Vendor      map[string]any
	ProjectName string
	RetryKey    string
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Skipped is set when the integration is off; nothing was sent.
	Skipped bool `json:"-"`
}

type Service struct {
	settings SettingsLoader
	pusher   Pusher
	audit    audit.Recorder
	metrics  *metrics.Metrics
}

func NewService(settings SettingsLoader, pusher Pusher, rec audit.Recorder, m *metrics.Metrics) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{settings: settings, pusher: pusher, audit: rec, metrics: m}
}

// Notify builds the card for req and pushes it. A disabled or unconfigured
// integration is a successful call with Success=false.
func (s *Service) Notify(ctx context.Context, req Request) (*Result, error) {
	docType := strings.ToUpper(strings.TrimSpace(req.Type))
	if docType != "PO" && docType != "VO" {
		return nil, apperrors.BadRequest("type must be PO or VO")
	}
	if len(req.Data) == 0 {
		return nil, apperrors.BadRequest("data is required")
	}
	label := strings.ToLower(docType)
	log := logging.FromContext(ctx).With(zap.String("operation", "line.notify"), zap.String("doc_type", docType), zap.String("doc_id", req.DocID))

	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.metrics.Notification(label, "error")
		return nil, err
	}
	if !settings.Ready() {
		s.metrics.Notification(label, "skipped")
		log.Info("line notification skipped")
		return &Result{Success: false, Message: MessageDisabled, Skipped: true}, nil
	}

	in := CardInput{
		DocID:       req.DocID,
		Data:        req.Data,
		Vendor:      req.Vendor,
		ProjectName: req.ProjectName,
		CompanyName: settings.CompanyName,
		LiffID:      settings.LiffID,
	}
	var msg Message
	if docType == "PO" {
		msg = BuildPOCard(in)
	} else {
		msg = BuildVOCard(in)
	}

	if err := s.pusher.Push(ctx, settings.ChannelAccessToken, settings.TargetID, []Message{msg}, req.RetryKey); err != nil {
		s.metrics.Notification(label, "failed")
		log.Warn("line push failed", zap.Error(err), zap.Any("provider", apperrors.DetailsOf(err)))
		return nil, err
	}

	s.metrics.Notification(label, "sent")
	s.audit.Record(ctx, audit.Event{
		Type:    audit.EventNotificationSent,
		Subject: label + "/" + req.DocID,
		Details: map[string]any{"target": settings.TargetID},
	})
	return &Result{Success: true, Message: "Notification sent"}, nil
}
