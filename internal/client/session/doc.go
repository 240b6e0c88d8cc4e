// Package session tracks who is logged in to the console.
//
// A Session is created once at startup; it checks the stored token in the
// background and exposes the outcome through Ready and Status. Login,
// Logout and Expire move it between the authenticated and unauthenticated
// states. Network calls never run under the session lock; an epoch counter
// makes sure a slow profile fetch cannot undo a later logout.
package session
