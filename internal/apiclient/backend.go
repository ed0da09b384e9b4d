package apiclient

import (
	"context"
	"errors"
	"net/http"

	"backend-touristsafety/internal/identity"
)

// AuthBackend authenticates a session against the API's /auth routes.
type AuthBackend struct {
	client *Client
}

// NewAuthBackend wraps c, which should not carry an Authenticator: a rejected
// login is a credential failure, not an expired session.
func NewAuthBackend(c *Client) *AuthBackend {
	return &AuthBackend{client: c}
}

func (b *AuthBackend) Login(ctx context.Context, creds identity.Credentials) (identity.Grant, error) {
	var grant identity.Grant
	err := b.client.Do(ctx, http.MethodPost, "/auth/login", creds, &grant)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		return identity.Grant{}, identity.ErrInvalidCredentials
	}
	if err != nil {
		return identity.Grant{}, err
	}
	return grant, nil
}

func (b *AuthBackend) Register(ctx context.Context, reg identity.Registration) (identity.Grant, error) {
	var grant identity.Grant
	if err := b.client.Do(ctx, http.MethodPost, "/auth/register", reg, &grant); err != nil {
		return identity.Grant{}, err
	}
	return grant, nil
}
