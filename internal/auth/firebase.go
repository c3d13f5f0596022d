// README: Firebase Admin SDK token verification for the HTTP API, plus a
// no-op fallback for local development without Firebase credentials.
// Grounded on fweilun-Ark/internal/infra/firebase.go.
package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Token holds the verified token data used by downstream middleware.
type Token struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier verifies a raw Firebase ID token string and returns token
// data.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Token, error)
}

// firebaseVerifier is the production implementation backed by the
// Firebase Admin SDK.
type firebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a TokenVerifier using the Firebase Admin
// SDK. If credentialsFile is non-empty it is used as the service-account
// JSON path; otherwise application-default credentials /
// GOOGLE_APPLICATION_CREDENTIALS are used. projectID is required so the
// SDK can construct the correct token-verification URL.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Token, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &Token{UID: token.UID, Claims: token.Claims}, nil
}

// NoopVerifier accepts any non-empty token string as an anonymous
// caller, for local development and scenario runs where no Firebase
// project is configured. It is the "no-op fallback" SPEC_FULL.md's
// DOMAIN STACK calls for alongside the real verifier.
type NoopVerifier struct{}

func (NoopVerifier) VerifyIDToken(_ context.Context, idToken string) (*Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("auth: empty token")
	}
	return &Token{UID: "anonymous", Claims: map[string]interface{}{}}, nil
}
