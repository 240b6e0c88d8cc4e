// Package tokenstore persists the session credentials (access and refresh
// tokens) and the last known permission codes in the local kv table.
package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/client/repositories/kv"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
	"github.com/dmitrijs2005/fleetadmin/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

// Store is safe for concurrent use; every multi-key write runs in one
// transaction so readers never observe a half-written pair.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo() kv.Repository {
	return kv.NewSQLiteRepository(s.db)
}

// AccessToken returns "" when no token is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.getString(ctx, common.AccessTokenKey)
}

// RefreshToken returns "" when no token is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.getString(ctx, common.RefreshTokenKey)
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	v, err := s.repo().Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("token store: %w", err)
	}
	return string(v), nil
}

// SetTokens stores both tokens atomically.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := kv.NewSQLiteRepository(tx)
		if err := r.Set(ctx, common.AccessTokenKey, []byte(access)); err != nil {
			return err
		}
		return r.Set(ctx, common.RefreshTokenKey, []byte(refresh))
	})
}

// SetAccessToken replaces the access token after a refresh.
func (s *Store) SetAccessToken(ctx context.Context, access string) error {
	return s.repo().Set(ctx, common.AccessTokenKey, []byte(access))
}

// Permissions returns the permission codes saved by the last successful
// profile check, or nil.
func (s *Store) Permissions(ctx context.Context) ([]string, error) {
	raw, err := s.repo().Get(ctx, common.PermissionsKey)
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, fmt.Errorf("token store: decode permissions: %w", err)
	}
	return codes, nil
}

func (s *Store) SetPermissions(ctx context.Context, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	raw, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	return s.repo().Set(ctx, common.PermissionsKey, raw)
}

// Clear removes both tokens and the permission list in one transaction.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return kv.NewSQLiteRepository(tx).Delete(ctx,
			common.AccessTokenKey, common.RefreshTokenKey, common.PermissionsKey)
	})
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
// The console cannot verify tokens (it has no key); the value is only used
// to refresh ahead of time. ok is false for opaque tokens or a missing exp.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token is a JWT whose exp is within skew of now.
// Tokens without a readable exp are never considered expired here; the
// server's 401 covers them.
func Expired(token string, now time.Time, skew time.Duration) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !now.Add(skew).Before(exp)
}

// ErrNoRefreshToken is returned by callers that need a refresh token when
// none is stored.
var ErrNoRefreshToken = errors.New("no refresh token")
