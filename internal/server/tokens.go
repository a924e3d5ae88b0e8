package server

import (
	"context"
	"errors"
	"fmt"

	"catcare/internal/schedule"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// JWKSVerifier validates Cognito access tokens against the user pool's
// published key set.
type JWKSVerifier struct {
	cache   *jwk.Cache
	jwksURL string
}

func NewJWKSVerifier(cache *jwk.Cache, jwksURL string) *JWKSVerifier {
	return &JWKSVerifier{cache: cache, jwksURL: jwksURL}
}

func (v *JWKSVerifier) Verify(ctx context.Context, accessToken string) (schedule.Session, error) {
	set, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return schedule.Session{}, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	return sessionFromToken(accessToken, set)
}

func sessionFromToken(accessToken string, set jwk.Set) (schedule.Session, error) {
	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return schedule.Session{}, fmt.Errorf("failed to parse JWT: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return schedule.Session{}, errors.New("no user ID in JWT subject claim")
	}

	// Access tokens carry the username, which is the email address used at
	// sign up. ID tokens carry email directly.
	var email string
	if err := token.Get("email", &email); err != nil {
		_ = token.Get("username", &email)
	}

	return schedule.Session{UserID: userID, Email: email}, nil
}
