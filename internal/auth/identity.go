package auth

import (
	"context"
	"errors"

	fbauth "firebase.google.com/go/v4/auth"
)

var (
	ErrEmailExists      = errors.New("email already exists")
	ErrIdentityNotFound = errors.New("identity not found")
)

// IdentityProvider is the slice of the identity store the bridge needs:
// custom token minting plus administrator provisioning.
type IdentityProvider interface {
	CustomToken(ctx context.Context, uid string) (string, error)
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	UIDByEmail(ctx context.Context, email string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseIdentity implements IdentityProvider with Firebase Authentication.
type FirebaseIdentity struct {
	client *fbauth.Client
}

func NewFirebaseIdentity(client *fbauth.Client) *FirebaseIdentity {
	return &FirebaseIdentity{client: client}
}

func (f *FirebaseIdentity) CustomToken(ctx context.Context, uid string) (string, error) {
	return f.client.CustomToken(ctx, uid)
}

func (f *FirebaseIdentity) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	rec, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return rec.UID, nil
}

func (f *FirebaseIdentity) UIDByEmail(ctx context.Context, email string) (string, error) {
	rec, err := f.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return "", ErrIdentityNotFound
		}
		return "", err
	}
	return rec.UID, nil
}

func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	err := f.client.DeleteUser(ctx, uid)
	if err != nil && fbauth.IsUserNotFound(err) {
		return ErrIdentityNotFound
	}
	return err
}
