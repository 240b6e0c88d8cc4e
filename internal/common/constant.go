// Package common contains shared constants, sentinel errors and small helpers
// used across the fleetadmin console.
package common

// HTTP header names set on every outbound request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerScheme            = "Bearer"
)

// Well-known keys in the local key/value store.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	PermissionsKey  = "permissions"

	CacheValuePrefix = "cache:"
	CacheTimePrefix  = "cache_time:"
)
