// Package navigation decides which console routes a session may reach and
// which menu entries it sees.
package navigation

import "github.com/dmitrijs2005/fleetadmin/internal/client/session"

// Decision is the outcome of Guard.
type Decision int

const (
	Loading Decision = iota
	RedirectLogin
	Allow
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Guard gates every protected route: nothing is shown while the session is
// being checked, unauthenticated users are sent to login.
func Guard(st session.Status) Decision {
	switch {
	case st.Loading:
		return Loading
	case !st.IsAuthenticated():
		return RedirectLogin
	default:
		return Allow
	}
}
