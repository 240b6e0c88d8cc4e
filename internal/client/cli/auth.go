package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/buildinfo"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
)

// getSimpleText, getTextDefault, getPassword and confirm are indirections
// used to facilitate testing. They point to interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText  = GetSimpleText
	getTextDefault = GetTextDefault
	getPassword    = GetPassword
	confirm        = Confirm
)

// inputErr reports a failed prompt read (EOF, closed terminal) as a
// cancelled operation.
func inputErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrCancelled, err)
}

// Login prompts for phone number and password and signs in. A rejected
// login prints the session's message and returns nil; the REPL then shows
// the login state through the prompt.
func (a *App) Login(ctx context.Context) error {
	phone, err := getSimpleText(a.reader, "شماره تلفن", a.out)
	if err != nil {
		return inputErr(err)
	}

	password, err := getPassword(a.out, "رمز عبور")
	if err != nil {
		return inputErr(err)
	}
	defer common.WipeByteArray(password)

	if phone == "" || len(password) == 0 {
		return common.ErrValidation
	}

	if err := a.session.Login(ctx, phone, password); err != nil {
		if msg := a.session.Status().Err; msg != "" {
			a.println(msg)
			return nil
		}
		return err
	}

	if u := a.session.Status().User; u != nil {
		a.println("خوش آمدید،", u.DisplayName())
	}
	return nil
}

// Logout ends the session and drops every cached response.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)

	if a.cache != nil {
		if err := a.cache.Purge(ctx); err != nil {
			a.logger.Warn(ctx, "failed to purge cache on logout", "err", err)
		}
	}

	a.println("از حساب کاربری خارج شدید.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.Status()
	if st.User == nil {
		return nil
	}

	a.printf("%s (%s)\n", st.User.DisplayName(), st.User.Phone)
	if st.User.IsSuperuser {
		a.println("superuser")
	}
	a.printf("permissions (%d): %s\n", st.Permissions.Len(), strings.Join(st.Permissions.Codes(), ", "))
	return nil
}

func (a *App) Version(ctx context.Context) error {
	a.println(buildinfo.String())
	return nil
}
