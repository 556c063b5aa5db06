// README: Firebase ID-token verification for the devices and operators that call the control API.
package infra

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type FirebaseToken struct {
	UID      string
	IssuedAt time.Time
	Expires  time.Time
	Claims   map[string]interface{}
}

// StringClaim returns a custom claim, or "" when absent or not a string.
func (t *FirebaseToken) StringClaim(name string) string {
	if t == nil {
		return ""
	}
	v, _ := t.Claims[name].(string)
	return v
}

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error)
}

type FirebaseOptions struct {
	ProjectID       string
	CredentialsFile string
	// CheckRevoked costs one Auth API round trip per request.
	CheckRevoked bool
}

type idTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseVerifier struct {
	client       idTokenClient
	checkRevoked bool
}

// NewFirebaseVerifier falls back to application-default credentials when no file is given.
func NewFirebaseVerifier(ctx context.Context, o FirebaseOptions) (TokenVerifier, error) {
	var opts []option.ClientOption
	if o.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: o.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app for %s: %w", o.ProjectID, err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &firebaseVerifier{client: client, checkRevoked: o.CheckRevoked}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error) {
	verify := v.client.VerifyIDToken
	if v.checkRevoked {
		verify = v.client.VerifyIDTokenAndCheckRevoked
	}
	token, err := verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return &FirebaseToken{
		UID:      token.UID,
		IssuedAt: time.Unix(token.IssuedAt, 0),
		Expires:  time.Unix(token.Expires, 0),
		Claims:   token.Claims,
	}, nil
}
