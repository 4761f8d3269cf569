// Package approvals implements the one-shot remote approval used by the LIFF
// approval page.
package approvals

import (
	"context"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/audit"
	"github.com/buildhub-th/procure-backend/internal/documents/domain"
	"github.com/buildhub-th/procure-backend/internal/documents/repository"
	"github.com/buildhub-th/procure-backend/internal/events"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/metrics"
	users "github.com/buildhub-th/procure-backend/internal/users/domain"
)

type State string

const (
	StateSuccess      State = "success"
	StateError        State = "error"
	StateUnauthorized State = "unauthorized"
	// StateReady is returned by Preview when the caller may approve.
	StateReady State = "ready"
)

// BindRedirect is where a caller without a profile is sent to link LINE.
const BindRedirect = "/liff/bind"

var (
	ErrNotBound         = apperrors.Unauthorized("LINE account is not linked to an employee profile")
	ErrInsufficientRole = apperrors.Forbidden("only admins and project managers can approve documents")
)

type ProfileGetter interface {
	GetByUID(ctx context.Context, uid string) (*users.UserProfile, error)
}

type DocumentStore interface {
	Get(ctx context.Context, t domain.Type, id string) (*domain.Document, error)
	Approve(ctx context.Context, t domain.Type, id, approverUID string) (*repository.ApproveOutcome, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

type Result struct {
	State           State            `json:"state"`
	Message         string           `json:"message,omitempty"`
	AlreadyApproved bool             `json:"alreadyApproved"`
	Redirect        string           `json:"redirect,omitempty"`
	Document        *domain.Document `json:"document,omitempty"`
}

type Service struct {
	profiles  ProfileGetter
	documents DocumentStore
	publisher Publisher
	audit     audit.Recorder
	metrics   *metrics.Metrics
}

func NewService(profiles ProfileGetter, documents DocumentStore, publisher Publisher, rec audit.Recorder, m *metrics.Metrics) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{profiles: profiles, documents: documents, publisher: publisher, audit: rec, metrics: m}
}

// Approve runs the approval rules in order. The returned Result is always
// non-nil; err carries the kind for every non-success state.
func (s *Service) Approve(ctx context.Context, uid, rawType, id string) (*Result, error) {
	log := logging.FromContext(ctx).With(zap.String("operation", "approval.approve"), zap.String("uid", uid))

	t, res, err := s.gate(ctx, uid, rawType, id)
	if err != nil {
		s.metrics.Approval(typeLabel(rawType), string(res.State))
		return res, err
	}

	out, err := s.documents.Approve(ctx, t, id, uid)
	if err != nil {
		s.metrics.Approval(string(t), string(StateError))
		log.Warn("approval failed", zap.String("doc_type", string(t)), zap.String("doc_id", id), zap.Error(err))
		return &Result{State: StateError, Message: apperrors.Message(err)}, err
	}

	if out.AlreadyApproved {
		s.metrics.Approval(string(t), "already_approved")
		return &Result{State: StateSuccess, Message: "Document already approved", AlreadyApproved: true, Document: out.Document}, nil
	}

	s.metrics.Approval(string(t), string(StateSuccess))
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventDocumentApproved,
		ActorUID: uid,
		Subject:  string(t) + "/" + id,
		Details:  map[string]any{"projectId": out.Document.ProjectID, "queued": out.Outbox != nil},
	})
	if s.publisher != nil {
		ev := events.Event{
			Type:      events.TypeDocumentApproved,
			ProjectID: out.Document.ProjectID,
			DocType:   string(t),
			DocID:     id,
			ActorUID:  uid,
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Warn("publish approval event failed", zap.Error(err))
		}
	}
	log.Info("document approved", zap.String("doc_type", string(t)), zap.String("doc_id", id))
	return &Result{State: StateSuccess, Message: "Document approved", Document: out.Document}, nil
}

// Preview applies the same gate as Approve and returns the document for the
// confirmation screen without writing.
func (s *Service) Preview(ctx context.Context, uid, rawType, id string) (*Result, error) {
	t, res, err := s.gate(ctx, uid, rawType, id)
	if err != nil {
		return res, err
	}
	doc, err := s.documents.Get(ctx, t, id)
	if err != nil {
		return &Result{State: StateError, Message: apperrors.Message(err)}, err
	}
	return &Result{State: StateReady, AlreadyApproved: doc.Approved(), Document: doc}, nil
}

// gate evaluates the caller and parameter rules shared by Approve and Preview.
func (s *Service) gate(ctx context.Context, uid, rawType, id string) (domain.Type, *Result, error) {
	if uid == "" {
		return "", &Result{State: StateUnauthorized, Message: apperrors.Message(ErrNotBound), Redirect: BindRedirect}, ErrNotBound
	}
	profile, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return "", &Result{State: StateUnauthorized, Message: apperrors.Message(ErrNotBound), Redirect: BindRedirect}, ErrNotBound
		}
		return "", &Result{State: StateError, Message: apperrors.Message(err)}, err
	}
	if !profile.IsActive || !profile.Role.CanApprove() {
		return "", &Result{State: StateUnauthorized, Message: apperrors.Message(ErrInsufficientRole)}, ErrInsufficientRole
	}

	t, err := domain.ParseType(rawType)
	if err != nil {
		return "", &Result{State: StateError, Message: apperrors.Message(err)}, err
	}
	if id == "" {
		return "", &Result{State: StateError, Message: apperrors.Message(domain.ErrMissingID)}, domain.ErrMissingID
	}
	return t, nil, nil
}

func typeLabel(raw string) string {
	if t, err := domain.ParseType(raw); err == nil {
		return string(t)
	}
	return "unknown"
}
