package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

func (a *App) Status() session.Status { return a.session.Status() }
func (a *App) Ready() <-chan struct{} { return a.session.Ready() }
func (a *App) Logger() logging.Logger { return a.logger }

func (a *App) getStatus() string {
	st := a.session.Status()
	switch {
	case st.Loading:
		return "(...)"
	case st.User != nil:
		return fmt.Sprintf("(%s)", st.User.DisplayName())
	}
	return ""
}

// Root greets the user, waits for the stored session to be checked and
// offers a login prompt if there is none. It then runs the REPL until the
// user exits.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to the fleet admin console (type 'help' for commands)")

	select {
	case <-a.session.Ready():
	case <-ctx.Done():
		return
	}

	if st := a.session.Status(); !st.IsAuthenticated() {
		if st.Err != "" {
			a.println(st.Err)
		}
		report(safeCall(ctx, a, func() error { return a.Login(ctx) }))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
