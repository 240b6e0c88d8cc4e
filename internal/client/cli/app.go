package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/client/screens"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

// SessionManager is the part of session.Session the console drives.
type SessionManager interface {
	Ready() <-chan struct{}
	Status() session.Status
	Login(ctx context.Context, identifier string, secret []byte) error
	Logout(ctx context.Context)
}

// GroupPermissionEditor is implemented by services.GroupPermissions.
type GroupPermissionEditor interface {
	Show(ctx context.Context, groupID int64) ([]services.Assignment, error)
	Grant(ctx context.Context, groupID int64, codenames ...string) ([]int64, error)
	Revoke(ctx context.Context, groupID int64, codenames ...string) ([]int64, error)
}

type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID int64, newPassword []byte) error
}

// Purger drops every cached response; called on logout.
type Purger interface {
	Purge(ctx context.Context) error
}

// InFlighter reports how many backend requests are pending.
type InFlighter interface {
	InFlight() int64
}

// Deps are the collaborators of App. In and Out default to the process
// stdin and stdout.
type Deps struct {
	Session          SessionManager
	Requests         InFlighter
	Cache            Purger
	GroupPermissions GroupPermissionEditor
	Users            PasswordChanger
	Screens          []screens.Screen
	Logger           logging.Logger
	ProgressDelay    time.Duration

	In  io.Reader
	Out io.Writer
}

type App struct {
	session    SessionManager
	requests   InFlighter
	cache      Purger
	groupPerms GroupPermissionEditor
	users      PasswordChanger
	screens    map[string]screens.Screen
	order      []string
	logger     logging.Logger
	delay      time.Duration

	in     io.Reader
	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer
}

func NewApp(d Deps) *App {
	a := &App{
		session:    d.Session,
		requests:   d.Requests,
		cache:      d.Cache,
		groupPerms: d.GroupPermissions,
		users:      d.Users,
		screens:    make(map[string]screens.Screen, len(d.Screens)),
		logger:     d.Logger,
		delay:      d.ProgressDelay,
		in:         d.In,
		out:        d.Out,
	}
	if a.logger == nil {
		a.logger = logging.Nop()
	}
	if a.in == nil {
		a.in = os.Stdin
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	a.reader = bufio.NewReader(a.in)

	for _, s := range d.Screens {
		a.screens[s.Route()] = s
		a.order = append(a.order, s.Route())
	}
	return a
}

// Run starts the progress watcher and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.requests != nil && a.delay > 0 {
		go a.StartProgressWatcher(ctx, a.delay/3+time.Millisecond)
	}
	a.Root(ctx)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// StartProgressWatcher polls the number of pending requests and prints a
// busy marker once a request has been pending for longer than the
// configured delay. The marker is printed once per busy period.
func (a *App) StartProgressWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		busySince time.Time
		shown     bool
	)

	for {
		select {
		case now := <-ticker.C:
			if a.requests.InFlight() == 0 {
				busySince, shown = time.Time{}, false
				continue
			}
			if busySince.IsZero() {
				busySince = now
			}
			if !shown && now.Sub(busySince) >= a.delay {
				a.println("…")
				shown = true
			}

		case <-ctx.Done():
			return
		}
	}
}
