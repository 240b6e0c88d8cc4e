package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/client/navigation"
	"github.com/dmitrijs2005/fleetadmin/internal/client/screens"
	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

const (
	msgChecking      = "در حال بررسی نشست..."
	msgLoginRequired = "برای ادامه وارد شوید."
	msgUnknown       = "Unknown command:"
	msgBye           = "Bye!"
)

// errUnknownRoute is returned by Route for a command no screen handles.
var errUnknownRoute = errors.New("unknown route")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Status() session.Status
	Ready() <-chan struct{}
	Logger() logging.Logger

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Menu(ctx context.Context) error
	Version(ctx context.Context) error
	Route(ctx context.Context, route string, args []string) error
}

const helpPublic = `Available commands:
  login                      sign in
  version                    show build information
  help                       show this help
  exit | quit                leave the program`

const helpSession = `Available commands:
  menu                       list the sections you can open
  <section> [list] [page] [search...]
  <section> add
  <section> edit <id>
  <section> delete <id>
  users passwd <id>          set a user's password
  group-perms show <group-id>
  group-perms grant|revoke <group-id> <codename...>
  whoami                     show the signed-in user
  logout                     sign out
  version                    show build information
  help                       show this help
  exit | quit                leave the program`

// runREPL starts a read–eval–print loop for the fleet console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a. Everything except help, login, version and
// exit goes through the route guard first: while the session is being
// checked the command waits, and without a session the user is sent to the
// login prompt.
//
// Handler errors are printed as user messages; a panicking handler is
// reported with a generic message and the loop keeps running. The loop
// exits on EOF, on "exit"/"quit", or when ctx is cancelled.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printFn("fleet " + statusFn() + "> ")

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn(msgBye)
			return
		case "help":
			if a.Status().IsAuthenticated() {
				printlnFn(helpSession)
			} else {
				printlnFn(helpPublic)
			}
			continue
		case "login":
			report(safeCall(ctx, a, func() error { return a.Login(ctx) }))
			continue
		case "version":
			report(safeCall(ctx, a, func() error { return a.Version(ctx) }))
			continue
		}

		if !guard(ctx, a) {
			continue
		}

		var handler func() error
		switch cmd {
		case "logout":
			handler = func() error { return a.Logout(ctx) }
		case "whoami":
			handler = func() error { return a.WhoAmI(ctx) }
		case "menu":
			handler = func() error { return a.Menu(ctx) }
		default:
			handler = func() error { return a.Route(ctx, cmd, args) }
		}

		err = safeCall(ctx, a, handler)
		if errors.Is(err, errUnknownRoute) {
			printlnFn(msgUnknown, cmd)
			continue
		}
		report(err)
	}
}

// guard applies navigation.Guard. It returns true when the command may run.
func guard(ctx context.Context, a execIface) bool {
	switch navigation.Guard(a.Status()) {
	case navigation.Loading:
		printlnFn(msgChecking)
		select {
		case <-a.Ready():
		case <-ctx.Done():
			return false
		}
		if navigation.Guard(a.Status()) == navigation.Allow {
			return true
		}
		if navigation.Guard(a.Status()) == navigation.Loading {
			return false
		}
		fallthrough
	case navigation.RedirectLogin:
		printlnFn(msgLoginRequired)
		if err := safeCall(ctx, a, func() error { return a.Login(ctx) }); err != nil {
			report(err)
			return false
		}
		return navigation.Guard(a.Status()) == navigation.Allow
	default:
		return true
	}
}

// errPanic marks a recovered handler panic.
var errPanic = errors.New("command panicked")

// safeCall runs fn and turns a panic into errPanic, logging the stack.
func safeCall(ctx context.Context, a execIface, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.Logger().Error(ctx, "command panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn()
}

func report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, screens.ErrStale) {
		return
	}
	if errors.Is(err, errForbidden) {
		printlnFn(screens.MsgForbidden)
		return
	}
	if errors.Is(err, errPanic) {
		printlnFn(screens.MsgUnexpected)
		return
	}
	printlnFn(screens.Message(err))
}
