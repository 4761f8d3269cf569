// Package linebridge exchanges a LINE identity for an application session and
// links LINE accounts to administrator-provisioned profiles.
package linebridge

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/audit"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/metrics"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

type ProfileStore interface {
	FindByLineUserID(ctx context.Context, lineUserID string) (*domain.UserProfile, error)
	Bind(ctx context.Context, phone, lineUserID string, linePic *string) (*domain.UserProfile, error)
}

type TokenMinter interface {
	CustomToken(ctx context.Context, uid string) (string, error)
}

// IDTokenVerifier returns the LINE user ID proven by a LIFF ID token.
type IDTokenVerifier interface {
	Verify(idToken string) (string, error)
}

type Options struct {
	// Verifier is nil when no LINE Login channel is configured; supplied ID
	// tokens are then ignored.
	Verifier       IDTokenVerifier
	RequireIDToken bool
	Audit          audit.Recorder
	Metrics        *metrics.Metrics
}

type Service struct {
	profiles ProfileStore
	tokens   TokenMinter
	opts     Options
}

func NewService(profiles ProfileStore, tokens TokenMinter, opts Options) *Service {
	if opts.Audit == nil {
		opts.Audit = audit.Nop{}
	}
	return &Service{profiles: profiles, tokens: tokens, opts: opts}
}

// Exchange mints a custom token for the profile linked to lineUserID.
func (s *Service) Exchange(ctx context.Context, lineUserID, idToken string) (string, error) {
	lineUserID = strings.TrimSpace(lineUserID)
	if lineUserID == "" {
		s.opts.Metrics.LineLogin("bad_request")
		return "", apperrors.BadRequest("lineUserId is required")
	}
	log := logging.FromContext(ctx).With(zap.String("operation", "line.exchange"), zap.String("line_user_id", lineUserID))

	if err := s.checkIDToken(lineUserID, idToken); err != nil {
		s.opts.Metrics.LineLogin("rejected")
		log.Info("id token rejected", zap.Error(err))
		return "", err
	}

	profile, err := s.profiles.FindByLineUserID(ctx, lineUserID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			s.opts.Metrics.LineLogin("not_linked")
		} else {
			s.opts.Metrics.LineLogin("error")
		}
		return "", err
	}
	if !profile.IsActive {
		s.opts.Metrics.LineLogin("disabled")
		return "", domain.ErrAccountDisabled
	}

	token, err := s.tokens.CustomToken(ctx, profile.UID)
	if err != nil {
		s.opts.Metrics.LineLogin("error")
		return "", apperrors.Service("failed to create custom token", err)
	}

	s.opts.Metrics.LineLogin("ok")
	s.opts.Audit.Record(ctx, audit.Event{Type: audit.EventLineLogin, ActorUID: profile.UID, Subject: profile.UID})
	log.Info("line session exchanged", zap.String("uid", profile.UID))
	return token, nil
}

type BindRequest struct {
	PhoneNumber string
	LineUserID  string
	LinePic     *string
	IDToken     string
}

type BindResult struct {
	UID         string
	CustomToken string
}

// Bind links the LINE account to the profile registered with the phone
// number and returns a token so the caller can sign in straight away.
func (s *Service) Bind(ctx context.Context, req BindRequest) (*BindResult, error) {
	lineUserID := strings.TrimSpace(req.LineUserID)
	if strings.TrimSpace(req.PhoneNumber) == "" || lineUserID == "" {
		s.opts.Metrics.Binding("bad_request")
		return nil, apperrors.BadRequest("phoneNumber and lineUserId are required")
	}
	log := logging.FromContext(ctx).With(zap.String("operation", "line.bind"), zap.String("line_user_id", lineUserID))

	// An unparseable number cannot match any stored (normalized) number.
	phone, err := domain.NormalizePhone(req.PhoneNumber)
	if err != nil {
		s.opts.Metrics.Binding("not_registered")
		return nil, domain.ErrPhoneNotRegistered
	}

	if err := s.checkIDToken(lineUserID, req.IDToken); err != nil {
		s.opts.Metrics.Binding("rejected")
		log.Info("id token rejected", zap.Error(err))
		return nil, err
	}

	var pic *string
	if req.LinePic != nil && strings.TrimSpace(*req.LinePic) != "" {
		v := strings.TrimSpace(*req.LinePic)
		pic = &v
	}

	profile, err := s.profiles.Bind(ctx, phone, lineUserID, pic)
	if err != nil {
		s.opts.Metrics.Binding(apperrors.KindOf(err).String())
		log.Info("binding refused", zap.Error(err))
		return nil, err
	}
	s.opts.Audit.Record(ctx, audit.Event{
		Type:     audit.EventLineBound,
		ActorUID: profile.UID,
		Subject:  profile.UID,
		Details:  map[string]any{"lineUserId": lineUserID},
	})

	if !profile.IsActive {
		s.opts.Metrics.Binding("disabled")
		return nil, domain.ErrAccountDisabled
	}

	token, err := s.tokens.CustomToken(ctx, profile.UID)
	if err != nil {
		s.opts.Metrics.Binding("error")
		return nil, apperrors.Service("failed to create custom token", err)
	}

	s.opts.Metrics.Binding("ok")
	log.Info("line account bound", zap.String("uid", profile.UID))
	return &BindResult{UID: profile.UID, CustomToken: token}, nil
}

func (s *Service) checkIDToken(lineUserID, idToken string) error {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		if s.opts.RequireIDToken {
			return apperrors.BadRequest("idToken is required")
		}
		return nil
	}
	if s.opts.Verifier == nil {
		return nil
	}
	sub, err := s.opts.Verifier.Verify(idToken)
	if err != nil {
		return &apperrors.Error{Kind: apperrors.KindUnauthorized, Message: "invalid LINE ID token", Err: err}
	}
	if sub != lineUserID {
		return apperrors.Unauthorized("LINE ID token does not match lineUserId")
	}
	return nil
}
