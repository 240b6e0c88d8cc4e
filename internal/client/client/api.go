package client

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
)

// API is the backend surface the console depends on.
type API interface {
	Login(ctx context.Context, identifier string, secret []byte) (models.TokenPair, error)
	Me(ctx context.Context) (*models.UserProfile, error)
	Logout(ctx context.Context, accessToken string) error
	Do(ctx context.Context, req Request, out any) error
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// Request describes one authenticated call. Body, when set, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// TokenSource supplies and updates the bearer credentials.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, access string) error
	SetTokens(ctx context.Context, access, refresh string) error
}

// Backend paths that are not resource collections.
const (
	LoginPath   = "/login/"
	MePath      = "/user/me"
	LogoutPath  = "/logout"
	RefreshPath = "/token/refresh/"
)
