package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	p "github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
	"github.com/dmitrijs2005/fleetadmin/internal/client/screens"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func navyTypesScreen() *fakeScreen {
	return &fakeScreen{
		route:      "navy-types",
		paginated:  true,
		searchable: true,
		required: map[screens.Action][]p.Permission{
			screens.ActionView:   {p.ViewNavyType},
			screens.ActionAdd:    {p.AddNavyType},
			screens.ActionChange: {p.ChangeNavyType},
			screens.ActionDelete: {p.DeleteNavyType},
		},
		fields: []screens.Field{{Name: "name", Label: "Name"}},
	}
}

var allNavyType = []p.Permission{p.ViewNavyType, p.AddNavyType, p.ChangeNavyType, p.DeleteNavyType}

// ---- routing and gating ----

func TestRoute_Unknown(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession())
	err := ta.Route(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, errUnknownRoute)
}

func TestRoute_MenuPermissionRequired(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "", newFakeSession(), scr)

	err := ta.Route(context.Background(), "navy-types", nil)

	assert.ErrorIs(t, err, errForbidden)
	assert.Empty(t, scr.listCalls)
}

func TestRoute_ActionPermissionRequired(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "", newFakeSession(p.ViewNavyType), scr)

	err := ta.Route(context.Background(), "navy-types", []string{"delete", "3"})

	assert.ErrorIs(t, err, errForbidden)
	assert.Empty(t, scr.deleted)
}

func TestRoute_DashboardPrintsVisibleMenu(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession(p.ViewNavyType))

	require.NoError(t, ta.Route(context.Background(), "dashboard", nil))

	out := ta.out.String()
	assert.Contains(t, out, "(navy-types)")
	assert.Contains(t, out, "(provider-requests)")
	assert.NotContains(t, out, "(navy-sizes)")
	assert.NotContains(t, out, "(users)")
}

// ---- list ----

func TestList_RendersTableAndPaging(t *testing.T) {
	scr := navyTypesScreen()
	scr.rows = [][]string{{"1", "Truck"}, {"2", "Bus"}}
	scr.info = screens.PageInfo{Count: 12, Returned: 2, HasPrev: true, HasNext: true}
	ta := newTestApp(t, "", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"list", "2", "big", "truck"}))

	assert.Equal(t, []string{"2 big truck"}, scr.listCalls)
	out := ta.out.String()
	assert.Contains(t, out, "title:navy-types")
	assert.Contains(t, out, "ID  Name")
	assert.Contains(t, out, "1   Truck")
	assert.Contains(t, out, "page 2, 2 of 12, prev: navy-types list 1, next: navy-types list 3")
}

func TestList_DefaultsAndEmpty(t *testing.T) {
	scr := navyTypesScreen()
	scr.searchable = false
	scr.paginated = false
	ta := newTestApp(t, "", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"ignored", "words"}))
	require.NoError(t, ta.Route(context.Background(), "navy-types", nil))

	assert.Equal(t, []string{"1"}, scr.listCalls)
	assert.Contains(t, ta.out.String(), "usage: navy-types")
	assert.Contains(t, ta.out.String(), msgEmpty)
}

// ---- add / edit / delete ----

func TestAdd_PromptsFieldsAndCreates(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "Truck\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"add"}))

	require.Len(t, scr.created, 1)
	assert.Equal(t, "Truck", scr.created[0]["name"])
	assert.Contains(t, ta.out.String(), msgCreated)
}

func TestAdd_OffersDraftAsDefault(t *testing.T) {
	scr := navyTypesScreen()
	scr.draft = screens.Form{"name": "Half typed"}
	ta := newTestApp(t, "\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"add"}))

	require.Len(t, scr.created, 1)
	assert.Equal(t, "Half typed", scr.created[0]["name"])
	assert.Contains(t, ta.out.String(), "[Half typed]")
}

func TestAdd_FailureIsReturned(t *testing.T) {
	scr := navyTypesScreen()
	scr.writeErr = fmt.Errorf("%w: name", common.ErrValidation)
	ta := newTestApp(t, "\n", newFakeSession(allNavyType...), scr)

	err := ta.Route(context.Background(), "navy-types", []string{"add"})

	assert.ErrorIs(t, err, common.ErrValidation)
	assert.NotContains(t, ta.out.String(), msgCreated)
}

func TestAdd_ReadOnly(t *testing.T) {
	scr := navyTypesScreen()
	scr.readOnly = true
	ta := newTestApp(t, "", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"add"}))

	assert.Empty(t, scr.created)
	assert.Contains(t, ta.out.String(), msgReadOnly)
}

func TestAdd_CascadeAndChoices(t *testing.T) {
	var sizeParents []int64
	scr := navyTypesScreen()
	scr.cascade = func() *screens.Cascade {
		return screens.NewCascade(
			screens.Slot{Field: "type_id", Label: "Type", Load: func(context.Context, int64) ([]screens.Option, error) {
				return []screens.Option{{Value: "1", Label: "Truck"}, {Value: "2", Label: "Bus"}}, nil
			}},
			screens.Slot{Field: "size_id", Label: "Size", Load: func(_ context.Context, parent int64) ([]screens.Option, error) {
				sizeParents = append(sizeParents, parent)
				return []screens.Option{{Value: "7", Label: "Large"}}, nil
			}},
		)
	}
	scr.fields = []screens.Field{
		{Name: "name", Label: "Name"},
		{Name: "active", Label: "Active", Kind: screens.Bool},
		{Name: "groups", Label: "Groups", Kind: screens.MultiChoice, Options: func(context.Context, screens.Form) ([]screens.Option, error) {
			return []screens.Option{{Value: "3", Label: "a"}, {Value: "4", Label: "b"}}, nil
		}},
		{Name: "kind", Label: "Kind", Kind: screens.Choice, Options: func(_ context.Context, f screens.Form) ([]screens.Option, error) {
			return []screens.Option{{Value: "x", Label: "size " + f.Get("size_id")}}, nil
		}},
	}
	ta := newTestApp(t, "2\n7\nBig bus\ny\n4, 3, 4\nx\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"add"}))

	require.Len(t, scr.created, 1)
	f := scr.created[0]
	assert.Equal(t, "2", f["type_id"])
	assert.Equal(t, "Bus", f.Label("type_id"))
	assert.Equal(t, "7", f["size_id"])
	assert.Equal(t, "Big bus", f["name"])
	assert.Equal(t, "true", f["active"])
	assert.Equal(t, "4,3", f["groups"])
	assert.Equal(t, "x", f["kind"])
	assert.Equal(t, "size 7", f.Label("kind"))
	assert.Equal(t, []int64{2}, sizeParents)
}

func TestAdd_InvalidChoice(t *testing.T) {
	scr := navyTypesScreen()
	scr.fields = []screens.Field{{Name: "kind", Label: "Kind", Kind: screens.Choice, Options: func(context.Context, screens.Form) ([]screens.Option, error) {
		return []screens.Option{{Value: "1", Label: "one"}}, nil
	}}}
	ta := newTestApp(t, "9\n", newFakeSession(allNavyType...), scr)

	err := ta.Route(context.Background(), "navy-types", []string{"add"})

	assert.ErrorIs(t, err, screens.ErrInvalidChoice)
	assert.Empty(t, scr.created)
}

func TestAdd_PasswordFieldUsesNoEcho(t *testing.T) {
	stubPasswords(t, "secret1")
	scr := navyTypesScreen()
	scr.fields = []screens.Field{
		{Name: "phone", Label: "Phone"},
		{Name: "password", Label: "Password", Kind: screens.Password, CreateOnly: true},
	}
	ta := newTestApp(t, "0912\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"add"}))

	require.Len(t, scr.created, 1)
	assert.Equal(t, "secret1", scr.created[0]["password"])
}

func TestAdd_InputClosed(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "", newFakeSession(allNavyType...), scr)

	err := ta.Route(context.Background(), "navy-types", []string{"add"})

	assert.ErrorIs(t, err, common.ErrCancelled)
}

func TestEdit_KeepsCurrentValues(t *testing.T) {
	scr := navyTypesScreen()
	scr.fields = append(scr.fields, screens.Field{Name: "password", Label: "Password", Kind: screens.Password, CreateOnly: true})
	scr.prefill = map[int64]screens.Form{5: {"name": "Old"}}
	ta := newTestApp(t, "\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"edit", "5"}))

	assert.Equal(t, screens.Form{"name": "Old"}, scr.updated[5])
	assert.Empty(t, scr.listCalls)
	assert.Contains(t, ta.out.String(), msgUpdated)
}

func typeSizeCascade() *screens.Cascade {
	return screens.NewCascade(
		screens.Slot{Field: "type_id", Label: "Type", Load: func(context.Context, int64) ([]screens.Option, error) {
			return []screens.Option{{Value: "1", Label: "Truck"}, {Value: "2", Label: "Bus"}}, nil
		}},
		screens.Slot{Field: "size_id", Label: "Size", Load: func(_ context.Context, parent int64) ([]screens.Option, error) {
			if parent == 1 {
				return []screens.Option{{Value: "7", Label: "Large"}}, nil
			}
			return []screens.Option{{Value: "8", Label: "Small"}}, nil
		}},
	)
}

func TestEdit_CascadeKeepsUnchangedParent(t *testing.T) {
	scr := navyTypesScreen()
	scr.cascade = typeSizeCascade
	scr.prefill = map[int64]screens.Form{5: {"name": "Old", "type_id": "1", "size_id": "7"}}
	ta := newTestApp(t, "\n\n\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"edit", "5"}))

	f := scr.updated[5]
	assert.Equal(t, "1", f["type_id"])
	assert.Equal(t, "7", f["size_id"])
	assert.Equal(t, "Large", f.Label("size_id"))
	assert.Contains(t, ta.out.String(), "Size [7]")
}

func TestEdit_CascadeParentChangeClearsChildDefault(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSize string
	}{
		{"child left empty", "2\n\n\n", ""},
		{"child picked", "2\n8\n\n", "8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scr := navyTypesScreen()
			scr.cascade = typeSizeCascade
			scr.prefill = map[int64]screens.Form{5: {"name": "Old", "type_id": "1", "size_id": "7"}}
			ta := newTestApp(t, tc.input, newFakeSession(allNavyType...), scr)

			require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"edit", "5"}))

			require.Contains(t, scr.updated, int64(5))
			f := scr.updated[5]
			assert.Equal(t, "2", f["type_id"])
			assert.Equal(t, tc.wantSize, f["size_id"])
			assert.Equal(t, "Old", f["name"])
			assert.NotContains(t, ta.out.String(), "Size [7]")
		})
	}
}

func TestEdit_ReloadsWhenNotLoaded(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "", newFakeSession(allNavyType...), scr)

	err := ta.Route(context.Background(), "navy-types", []string{"edit", "5"})

	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, []string{"1"}, scr.listCalls)
}

func TestEdit_Usage(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"edit"}))
	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"edit", "abc"}))

	assert.Equal(t, 2, strings.Count(ta.out.String(), "usage: navy-types edit <id>"))
}

func TestDelete_Confirmed(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "y\n", newFakeSession(allNavyType...), scr)

	require.NoError(t, ta.Route(context.Background(), "navy-types", []string{"delete", "3"}))

	assert.Equal(t, []int64{3}, scr.deleted)
	assert.Contains(t, ta.out.String(), msgDeleted)
}

func TestDelete_Refused(t *testing.T) {
	scr := navyTypesScreen()
	ta := newTestApp(t, "n\n", newFakeSession(allNavyType...), scr)

	err := ta.Route(context.Background(), "navy-types", []string{"delete", "3"})

	assert.ErrorIs(t, err, common.ErrCancelled)
	assert.Empty(t, scr.deleted)
}

// ---- group permissions and passwords ----

func TestGroupPermissions_Show(t *testing.T) {
	sess := newFakeSession(p.ViewGroup, p.ViewPermission)
	ta := newTestApp(t, "", sess)
	ta.perms.rows = []services.Assignment{
		{Permission: models.Permission{ID: 1, CodeName: "view_user", Name: "Can view user"}, Granted: true},
		{Permission: models.Permission{ID: 2, CodeName: "add_user", Name: "Can add user"}},
	}

	require.NoError(t, ta.Route(context.Background(), "group-perms", []string{"show", "4"}))

	out := ta.out.String()
	assert.Contains(t, out, "view_user")
	assert.Contains(t, out, groupPermissionsMark)
	assert.Equal(t, 1, strings.Count(out, groupPermissionsMark))
}

func TestGroupPermissions_GrantRevoke(t *testing.T) {
	sess := newFakeSession(p.ViewGroup, p.ViewPermission, p.ChangeGroup)
	ta := newTestApp(t, "", sess)

	require.NoError(t, ta.Route(context.Background(), "group-perms", []string{"grant", "4", "view_user", "add_user"}))
	require.NoError(t, ta.Route(context.Background(), "group-perms", []string{"revoke", "4", "add_user"}))

	assert.Equal(t, []string{"view_user", "add_user"}, ta.perms.granted[4])
	assert.Equal(t, []string{"add_user"}, ta.perms.revoked[4])
	assert.Equal(t, 2, strings.Count(ta.out.String(), msgPermissionsSaved))
}

func TestGroupPermissions_GrantNeedsChangeGroup(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession(p.ViewGroup, p.ViewPermission))

	err := ta.Route(context.Background(), "group-perms", []string{"grant", "4", "view_user"})

	assert.ErrorIs(t, err, errForbidden)
	assert.Empty(t, ta.perms.granted)
}

func TestGroupPermissions_UnknownCodename(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession(p.ViewGroup, p.ViewPermission, p.ChangeGroup))
	ta.perms.err = fmt.Errorf("%w: nope", services.ErrUnknownCodename)

	require.NoError(t, ta.Route(context.Background(), "group-perms", []string{"grant", "4", "nope"}))

	assert.Contains(t, ta.out.String(), msgUnknownCodename+" nope")
}

func TestGroupPermissions_Usage(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession(p.ViewGroup, p.ViewPermission, p.ChangeGroup))

	for _, args := range [][]string{nil, {"show"}, {"show", "x"}, {"grant", "4"}, {"bogus", "4"}} {
		require.NoError(t, ta.Route(context.Background(), "group-perms", args))
	}
	assert.Equal(t, 5, strings.Count(ta.out.String(), usageGroupPerms))
}

func TestPasswd(t *testing.T) {
	tests := []struct {
		name    string
		pws     []string
		wantMsg string
		wantPW  string
	}{
		{"changed", []string{"newpass1", "newpass1"}, msgPasswordChanged, "newpass1"},
		{"mismatch", []string{"newpass1", "newpass2"}, msgPasswordMismatch, ""},
		{"too short", []string{"abc", "abc"}, msgPasswordTooShort, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stubPasswords(t, tc.pws...)
			ta := newTestApp(t, "", newFakeSession(p.ViewUser, p.ChangeUser))

			require.NoError(t, ta.Route(context.Background(), "users", []string{"passwd", "9"}))

			assert.Contains(t, ta.out.String(), tc.wantMsg)
			assert.Equal(t, tc.wantPW, ta.users.pw)
		})
	}
}

func TestPasswd_Forbidden(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession(p.ViewUser))
	err := ta.Route(context.Background(), "users", []string{"passwd", "9"})
	assert.ErrorIs(t, err, errForbidden)
}

// ---- auth ----

func TestLogin_Success(t *testing.T) {
	stubPasswords(t, "pw")
	sess := newFakeSession()
	ta := newTestApp(t, "0912\n", sess)

	require.NoError(t, ta.Login(context.Background()))

	assert.Equal(t, []string{"0912:pw"}, sess.logins)
	assert.Contains(t, ta.out.String(), "0912")
}

func TestLogin_RejectedPrintsSessionMessage(t *testing.T) {
	stubPasswords(t, "bad")
	sess := newFakeSession()
	sess.status = session.Status{}
	sess.loginFn = func(string, []byte) error {
		sess.mu.Lock()
		sess.status.Err = session.MsgInvalidCredentials
		sess.mu.Unlock()
		return session.ErrInvalidCredentials
	}
	ta := newTestApp(t, "0912\n", sess)

	require.NoError(t, ta.Login(context.Background()))

	assert.Contains(t, ta.out.String(), session.MsgInvalidCredentials)
}

func TestLogin_EmptyInput(t *testing.T) {
	stubPasswords(t, "")
	ta := newTestApp(t, "\n", newFakeSession())

	err := ta.Login(context.Background())

	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, ta.session.logins)
}

func TestLogout_PurgesCache(t *testing.T) {
	sess := newFakeSession()
	ta := newTestApp(t, "", sess)

	require.NoError(t, ta.Logout(context.Background()))

	assert.Equal(t, 1, sess.logouts)
	assert.Equal(t, 1, ta.cache.purged)
	assert.False(t, sess.Status().IsAuthenticated())
}

func TestWhoAmI(t *testing.T) {
	ta := newTestApp(t, "", newFakeSession(p.ViewUser, p.ViewGroup))

	require.NoError(t, ta.WhoAmI(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "Ali (09120000000)")
	assert.Contains(t, out, "permissions (2)")
	assert.Contains(t, out, "accounts.view_user")
}

func TestGetStatus(t *testing.T) {
	sess := newFakeSession()
	ta := newTestApp(t, "", sess)
	assert.Equal(t, "(Ali)", ta.getStatus())

	sess.status = session.Status{Loading: true}
	assert.Equal(t, "(...)", ta.getStatus())

	sess.status = session.Status{}
	assert.Equal(t, "", ta.getStatus())
}

// ---- progress ----

type fakeInFlight struct{ n atomic.Int64 }

func (f *fakeInFlight) InFlight() int64 { return f.n.Load() }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(data []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(data)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressWatcher_ShowsMarkerOncePerBusyPeriod(t *testing.T) {
	reqs := &fakeInFlight{}
	out := &syncBuffer{}
	a := NewApp(Deps{Session: newFakeSession(), Requests: reqs, ProgressDelay: 20 * time.Millisecond, Out: out, In: strings.NewReader("")})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartProgressWatcher(ctx, 2*time.Millisecond)
		close(done)
	}()

	reqs.n.Store(1)
	assert.Eventually(t, func() bool { return strings.Count(out.String(), "…") == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, strings.Count(out.String(), "…"))

	reqs.n.Store(0)
	time.Sleep(20 * time.Millisecond)
	reqs.n.Store(2)
	assert.Eventually(t, func() bool { return strings.Count(out.String(), "…") == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestProgressWatcher_QuickRequestsStaySilent(t *testing.T) {
	reqs := &fakeInFlight{}
	out := &syncBuffer{}
	a := NewApp(Deps{Session: newFakeSession(), Requests: reqs, ProgressDelay: time.Hour, Out: out, In: strings.NewReader("")})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	reqs.n.Store(1)
	a.StartProgressWatcher(ctx, 2*time.Millisecond)

	assert.Empty(t, out.String())
}

func TestNewApp_Defaults(t *testing.T) {
	a := NewApp(Deps{Session: newFakeSession(), Screens: []screens.Screen{navyTypesScreen()}})
	assert.NotNil(t, a.logger)
	assert.NotNil(t, a.reader)
	assert.Contains(t, a.screens, "navy-types")
}
