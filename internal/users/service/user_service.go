package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/audit"
	"github.com/buildhub-th/procure-backend/internal/auth"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

type ProfileStore interface {
	GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error)
	List(ctx context.Context) ([]*domain.UserProfile, error)
	Create(ctx context.Context, uid string, in domain.CreateProfile) error
	Update(ctx context.Context, uid string, upd domain.UpdateProfile) (*domain.UserProfile, error)
	ClearLine(ctx context.Context, uid string) error
	Delete(ctx context.Context, uid string) error
}

// UserService implements administrator user management on top of the
// identity store and the profile collection.
type UserService struct {
	identity auth.IdentityProvider
	profiles ProfileStore
	audit    audit.Recorder
}

func NewUserService(identity auth.IdentityProvider, profiles ProfileStore, rec audit.Recorder) *UserService {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &UserService{identity: identity, profiles: profiles, audit: rec}
}

// Create provisions an identity and its profile. An email that already has
// an identity reuses that identity's UID.
func (s *UserService) Create(ctx context.Context, actorUID string, in domain.CreateProfile) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Email == "" || in.Password == "" || in.DisplayName == "" {
		return "", apperrors.BadRequest("email, password and displayName are required")
	}
	if in.Role == "" {
		in.Role = domain.DefaultRole
	} else if r, ok := domain.ParseRole(string(in.Role)); ok {
		in.Role = r
	} else {
		return "", domain.ErrInvalidRole
	}
	if strings.TrimSpace(in.PhoneNumber) != "" {
		phone, err := domain.NormalizePhone(in.PhoneNumber)
		if err != nil {
			return "", err
		}
		in.PhoneNumber = phone
	} else {
		in.PhoneNumber = ""
	}

	log := logging.FromContext(ctx).With(zap.String("operation", "users.create"), zap.String("email", in.Email))

	created := true
	uid, err := s.identity.CreateUser(ctx, in.Email, in.Password, in.DisplayName)
	if errors.Is(err, auth.ErrEmailExists) {
		created = false
		uid, err = s.identity.UIDByEmail(ctx, in.Email)
		if err == nil {
			log.Info("email already registered, reusing identity", zap.String("uid", uid))
		}
	}
	if err != nil {
		return "", apperrors.Service("failed to create identity", err)
	}

	if err := s.profiles.Create(ctx, uid, in); err != nil {
		if created {
			if derr := s.identity.DeleteUser(ctx, uid); derr != nil {
				log.Warn("rollback identity after profile failure", zap.String("uid", uid), zap.Error(derr))
			}
		}
		return "", err
	}

	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventUserCreated,
		ActorUID: actorUID,
		Subject:  uid,
		Details:  map[string]any{"email": in.Email, "role": string(in.Role), "reusedIdentity": !created},
	})
	log.Info("user created", zap.String("uid", uid), zap.String("role", string(in.Role)))
	return uid, nil
}

// Delete removes the identity and then the profile. An identity that is
// already gone does not stop the profile deletion.
func (s *UserService) Delete(ctx context.Context, actorUID, uid string) error {
	if strings.TrimSpace(uid) == "" {
		return apperrors.BadRequest("user id is required")
	}
	log := logging.FromContext(ctx).With(zap.String("operation", "users.delete"), zap.String("uid", uid))

	if err := s.identity.DeleteUser(ctx, uid); err != nil {
		if !errors.Is(err, auth.ErrIdentityNotFound) {
			return apperrors.Service("failed to delete identity", err)
		}
		log.Info("identity already absent, deleting profile only")
	}
	if err := s.profiles.Delete(ctx, uid); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{Type: audit.EventUserDeleted, ActorUID: actorUID, Subject: uid})
	return nil
}

func (s *UserService) Get(ctx context.Context, uid string) (*domain.UserProfile, error) {
	return s.profiles.GetByUID(ctx, uid)
}

func (s *UserService) List(ctx context.Context) ([]*domain.UserProfile, error) {
	return s.profiles.List(ctx)
}

func (s *UserService) Update(ctx context.Context, actorUID, uid string, upd domain.UpdateProfile) (*domain.UserProfile, error) {
	if upd.Empty() {
		return nil, apperrors.BadRequest("nothing to update")
	}
	if upd.Role != nil {
		r, ok := domain.ParseRole(string(*upd.Role))
		if !ok {
			return nil, domain.ErrInvalidRole
		}
		upd.Role = &r
	}
	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" {
			return nil, apperrors.BadRequest("displayName cannot be empty")
		}
		upd.DisplayName = &name
	}
	if upd.PhoneNumber != nil && strings.TrimSpace(*upd.PhoneNumber) != "" {
		phone, err := domain.NormalizePhone(*upd.PhoneNumber)
		if err != nil {
			return nil, err
		}
		upd.PhoneNumber = &phone
	} else if upd.PhoneNumber != nil {
		empty := ""
		upd.PhoneNumber = &empty
	}

	p, err := s.profiles.Update(ctx, uid, upd)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	if upd.Role != nil {
		details["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		details["isActive"] = *upd.IsActive
	}
	if upd.PhoneNumber != nil {
		details["phoneNumber"] = *upd.PhoneNumber
	}
	s.audit.Record(ctx, audit.Event{Type: audit.EventUserUpdated, ActorUID: actorUID, Subject: uid, Details: details})
	return p, nil
}

// UnlinkLine clears the LINE binding so the employee can bind a new account.
func (s *UserService) UnlinkLine(ctx context.Context, actorUID, uid string) error {
	if err := s.profiles.ClearLine(ctx, uid); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Event{Type: audit.EventUserLineUnlinked, ActorUID: actorUID, Subject: uid})
	return nil
}
