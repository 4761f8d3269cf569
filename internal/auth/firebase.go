package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/buildhub-th/procure-backend/config"
)

var firebaseScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// InitializeFirebase initializes the Firebase Admin SDK. A service account
// file is used when configured; otherwise Application Default Credentials.
func InitializeFirebase(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	var opt option.ClientOption
	if cfg.CredentialsPath != "" {
		opt = option.WithCredentialsFile(cfg.CredentialsPath)
	} else {
		creds, err := google.FindDefaultCredentials(ctx, firebaseScopes...)
		if err != nil {
			return nil, fmt.Errorf("find default credentials: %w", err)
		}
		opt = option.WithCredentials(creds)
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}
