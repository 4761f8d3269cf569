package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

// ProfileRepository persists user profiles in the users collection. The
// phone and LINE uniqueness rules are enforced inside Firestore transactions
// that re-read the conflicting profiles before writing.
type ProfileRepository struct {
	client *firestore.Client
}

func NewProfileRepository(client *firestore.Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

func (r *ProfileRepository) col() *firestore.CollectionRef {
	return r.client.Collection(fs.CollectionUsers)
}

func decode(snap *firestore.DocumentSnapshot) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", snap.Ref.ID, err)
	}
	p.UID = snap.Ref.ID
	return &p, nil
}

func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if fs.IsNotFound(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Service("failed to load profile", err)
	}
	return decode(snap)
}

// FindByLineUserID returns the first profile carrying lineUserID. Duplicates
// are not detected here; the profiles check command reports them.
func (r *ProfileRepository) FindByLineUserID(ctx context.Context, lineUserID string) (*domain.UserProfile, error) {
	var found *domain.UserProfile
	err := fs.All(r.col().Where("lineUserId", "==", lineUserID).Limit(1).Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		p, err := decode(snap)
		found = p
		return err
	})
	if err != nil {
		return nil, apperrors.Service("failed to look up LINE user", err)
	}
	if found == nil {
		return nil, domain.ErrNotLinked
	}
	return found, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.UserProfile, error) {
	out := make([]*domain.UserProfile, 0, 32)
	err := fs.All(r.col().OrderBy("email", firestore.Asc).Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		p, err := decode(snap)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, apperrors.Service("failed to list profiles", err)
	}
	return out, nil
}

// All returns every profile without ordering; used by the duplicate scan.
func (r *ProfileRepository) All(ctx context.Context) ([]*domain.UserProfile, error) {
	var out []*domain.UserProfile
	err := fs.All(r.col().Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		p, err := decode(snap)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func queryTx(tx *firestore.Transaction, q firestore.Query) ([]*domain.UserProfile, error) {
	var out []*domain.UserProfile
	err := fs.All(tx.Documents(q), func(snap *firestore.DocumentSnapshot) error {
		p, err := decode(snap)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// Create writes a new profile for uid. phone must already be normalized; an
// empty phone is stored as null.
func (r *ProfileRepository) Create(ctx context.Context, uid string, in domain.CreateProfile) error {
	ref := r.col().Doc(uid)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var phone any
		if in.PhoneNumber != "" {
			holders, err := queryTx(tx, r.col().Where("phoneNumber", "==", in.PhoneNumber).Limit(1))
			if err != nil {
				return err
			}
			if len(holders) > 0 {
				return domain.ErrPhoneTaken
			}
			phone = in.PhoneNumber
		}

		return tx.Create(ref, map[string]any{
			"email":       in.Email,
			"displayName": in.DisplayName,
			"role":        string(in.Role),
			"isActive":    true,
			"phoneNumber": phone,
			"lineUserId":  nil,
			"linePic":     nil,
			"createdAt":   firestore.ServerTimestamp,
			"updatedAt":   firestore.ServerTimestamp,
		})
	})
	return translate(err, "failed to create profile")
}

func (r *ProfileRepository) Update(ctx context.Context, uid string, upd domain.UpdateProfile) (*domain.UserProfile, error) {
	ref := r.col().Doc(uid)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if fs.IsNotFound(err) {
				return domain.ErrProfileNotFound
			}
			return err
		}

		updates := []firestore.Update{{Path: "updatedAt", Value: firestore.ServerTimestamp}}
		if upd.PhoneNumber != nil {
			if *upd.PhoneNumber == "" {
				updates = append(updates, firestore.Update{Path: "phoneNumber", Value: nil})
			} else {
				holders, err := queryTx(tx, r.col().Where("phoneNumber", "==", *upd.PhoneNumber))
				if err != nil {
					return err
				}
				for _, h := range holders {
					if h.UID != snap.Ref.ID {
						return domain.ErrPhoneTaken
					}
				}
				updates = append(updates, firestore.Update{Path: "phoneNumber", Value: *upd.PhoneNumber})
			}
		}
		if upd.DisplayName != nil {
			updates = append(updates, firestore.Update{Path: "displayName", Value: *upd.DisplayName})
		}
		if upd.Role != nil {
			updates = append(updates, firestore.Update{Path: "role", Value: string(*upd.Role)})
		}
		if upd.IsActive != nil {
			updates = append(updates, firestore.Update{Path: "isActive", Value: *upd.IsActive})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return nil, translate(err, "failed to update profile")
	}
	return r.GetByUID(ctx, uid)
}

// Bind links lineUserID to the profile registered with phone. Both
// uniqueness lookups run inside the transaction, so of two concurrent
// binders exactly one commits and the other re-runs against its write.
func (r *ProfileRepository) Bind(ctx context.Context, phone, lineUserID string, linePic *string) (*domain.UserProfile, error) {
	var bound *domain.UserProfile
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		byPhone, err := queryTx(tx, r.col().Where("phoneNumber", "==", phone).Limit(1))
		if err != nil {
			return err
		}
		byLine, err := queryTx(tx, r.col().Where("lineUserId", "==", lineUserID))
		if err != nil {
			return err
		}

		var target *domain.UserProfile
		if len(byPhone) > 0 {
			target = byPhone[0]
		}
		if err := domain.ValidateBinding(target, byLine, lineUserID); err != nil {
			return err
		}

		var pic any
		if linePic != nil {
			pic = *linePic
		}
		target.LineUserID = &lineUserID
		target.LinePic = linePic
		bound = target
		return tx.Update(r.col().Doc(target.UID), []firestore.Update{
			{Path: "lineUserId", Value: lineUserID},
			{Path: "linePic", Value: pic},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return nil, translate(err, "failed to bind LINE account")
	}
	return bound, nil
}

// ClearLine removes the LINE binding from a profile.
func (r *ProfileRepository) ClearLine(ctx context.Context, uid string) error {
	ref := r.col().Doc(uid)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if fs.IsNotFound(err) {
				return domain.ErrProfileNotFound
			}
			return err
		}
		p, err := decode(snap)
		if err != nil {
			return err
		}
		if p.LineID() == "" {
			return domain.ErrLineNotBound
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "lineUserId", Value: nil},
			{Path: "linePic", Value: nil},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	return translate(err, "failed to unlink LINE account")
}

func (r *ProfileRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.col().Doc(uid).Delete(ctx); err != nil {
		return apperrors.Service("failed to delete profile", err)
	}
	return nil
}

// translate keeps domain errors as they are and wraps everything else.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if fs.IsAlreadyExists(err) {
		return apperrors.Conflict("profile already exists")
	}
	return apperrors.Service(msg, err)
}
