// Package client talks to the fleet backend over HTTP+JSON and bootstraps
// the local SQLite state database.
//
// # Overview
//
//  1. API is the transport contract used by the session and the services:
//     Login, Me, Logout and a generic authenticated Do/Get.
//  2. HTTPClient implements it: it attaches the bearer token and a request
//     id, refreshes an expired access token once (ahead of time when the JWT
//     exp says so, or after a 401), and maps failures onto the error
//     taxonomy below.
//  3. InitDatabase/RunMigrations open the local database and apply the
//     embedded goose migrations.
//
// # Error Handling
//
//   - ErrUnavailable: no response was received (network failure, timeout).
//   - *HTTPError: any non-2xx response, with the field errors it carried.
//   - ErrUnauthorized: a 401 on an authenticated call that a refresh could
//     not fix. The unauthorized handler (see SetUnauthorizedHandler) runs
//     before the error is returned, so the session is torn down even if a
//     caller ignores the error.
//
// All operations accept a context.Context and honour cancellation.
package client
