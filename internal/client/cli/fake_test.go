package cli

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
	"github.com/dmitrijs2005/fleetadmin/internal/client/screens"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
)

// ---- session ----

type fakeSession struct {
	mu      sync.Mutex
	status  session.Status
	ready   chan struct{}
	loginFn func(identifier string, secret []byte) error

	logins  []string
	logouts int
}

func newFakeSession(perms ...permissions.Permission) *fakeSession {
	ready := make(chan struct{})
	close(ready)
	return &fakeSession{
		ready: ready,
		status: session.Status{
			User:        &models.UserProfile{ID: 1, Phone: "09120000000", FirstName: "Ali"},
			Permissions: permissions.NewSet(perms...),
		},
	}
}

func (f *fakeSession) Ready() <-chan struct{} { return f.ready }

func (f *fakeSession) Status() session.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeSession) Login(_ context.Context, identifier string, secret []byte) error {
	f.mu.Lock()
	f.logins = append(f.logins, identifier+":"+string(secret))
	fn := f.loginFn
	f.mu.Unlock()
	if fn != nil {
		return fn(identifier, secret)
	}
	f.mu.Lock()
	f.status.User = &models.UserProfile{ID: 1, Phone: identifier}
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.status = session.Status{}
}

// ---- screen ----

type fakeScreen struct {
	route      string
	readOnly   bool
	paginated  bool
	searchable bool
	required   map[screens.Action][]permissions.Permission
	fields     []screens.Field
	cascade    func() *screens.Cascade

	rows    [][]string
	info    screens.PageInfo
	prefill map[int64]screens.Form
	draft   screens.Form

	listCalls []string
	created   []screens.Form
	updated   map[int64]screens.Form
	deleted   []int64
	writeErr  error
}

func (s *fakeScreen) Route() string    { return s.route }
func (s *fakeScreen) Title() string    { return "title:" + s.route }
func (s *fakeScreen) ReadOnly() bool   { return s.readOnly }
func (s *fakeScreen) Paginated() bool  { return s.paginated }
func (s *fakeScreen) Searchable() bool { return s.searchable }

func (s *fakeScreen) Required(a screens.Action) []permissions.Permission { return s.required[a] }

func (s *fakeScreen) Fields() []screens.Field { return s.fields }

func (s *fakeScreen) NewCascade() *screens.Cascade {
	if s.cascade == nil {
		return nil
	}
	return s.cascade()
}

func (s *fakeScreen) List(_ context.Context, page int, search string) error {
	s.listCalls = append(s.listCalls, strings.TrimSpace(strings.Join([]string{strconv.Itoa(page), search}, " ")))
	s.info.Page, s.info.Search = page, search
	return nil
}

func (s *fakeScreen) Columns() []string { return []string{"ID", "Name"} }

func (s *fakeScreen) Rows() [][]string { return s.rows }

func (s *fakeScreen) PageInfo() screens.PageInfo { return s.info }

func (s *fakeScreen) Draft() screens.Form { return s.draft }

func (s *fakeScreen) Prefill(id int64) (screens.Form, bool) {
	f, ok := s.prefill[id]
	return f, ok
}

func (s *fakeScreen) Create(_ context.Context, f screens.Form) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.created = append(s.created, f)
	return nil
}

func (s *fakeScreen) Update(_ context.Context, id int64, f screens.Form) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if s.updated == nil {
		s.updated = map[int64]screens.Form{}
	}
	s.updated[id] = f
	return nil
}

func (s *fakeScreen) Delete(_ context.Context, id int64, confirm func(string) bool) error {
	if !confirm("delete?") {
		return common.ErrCancelled
	}
	s.deleted = append(s.deleted, id)
	return nil
}

// ---- services ----

type fakeGroupPerms struct {
	rows    []services.Assignment
	granted map[int64][]string
	revoked map[int64][]string
	err     error
}

func (f *fakeGroupPerms) Show(context.Context, int64) ([]services.Assignment, error) {
	return f.rows, f.err
}

func (f *fakeGroupPerms) Grant(_ context.Context, groupID int64, codenames ...string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.granted == nil {
		f.granted = map[int64][]string{}
	}
	f.granted[groupID] = append(f.granted[groupID], codenames...)
	return nil, nil
}

func (f *fakeGroupPerms) Revoke(_ context.Context, groupID int64, codenames ...string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.revoked == nil {
		f.revoked = map[int64][]string{}
	}
	f.revoked[groupID] = append(f.revoked[groupID], codenames...)
	return nil, nil
}

type fakeUsers struct {
	id int64
	pw string
}

func (f *fakeUsers) ChangePassword(_ context.Context, id int64, pw []byte) error {
	f.id, f.pw = id, string(pw)
	return nil
}

type fakePurger struct{ purged int }

func (f *fakePurger) Purge(context.Context) error { f.purged++; return nil }

// ---- helpers ----

type testApp struct {
	*App
	out     *bytes.Buffer
	session *fakeSession
	perms   *fakeGroupPerms
	users   *fakeUsers
	cache   *fakePurger
}

func newTestApp(t *testing.T, input string, sess *fakeSession, scr ...screens.Screen) *testApp {
	t.Helper()
	out := &bytes.Buffer{}
	ta := &testApp{
		out:     out,
		session: sess,
		perms:   &fakeGroupPerms{},
		users:   &fakeUsers{},
		cache:   &fakePurger{},
	}
	ta.App = NewApp(Deps{
		Session:          sess,
		Cache:            ta.cache,
		GroupPermissions: ta.perms,
		Users:            ta.users,
		Screens:          scr,
		In:               strings.NewReader(input),
		Out:              out,
	})
	return ta
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	t.Cleanup(func() { getPassword = orig })
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
}
