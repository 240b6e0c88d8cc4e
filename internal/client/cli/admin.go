package cli

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
)

const (
	msgPermissionsSaved  = "دسترسی‌های گروه ذخیره شد."
	msgUnknownCodename   = "کد دسترسی ناشناخته است:"
	msgPasswordMismatch  = "رمزهای عبور یکسان نیستند."
	msgPasswordTooShort  = "رمز عبور باید حداقل ۶ کاراکتر باشد."
	msgPasswordChanged   = "رمز عبور تغییر کرد."
	usageGroupPerms      = "usage: group-perms show <group-id> | group-perms grant|revoke <group-id> <codename...>"
	usagePasswd          = "usage: users passwd <user-id>"
	minPasswordLength    = 6
	groupPermissionsMark = "✓"
)

// groupPermissions handles "group-perms show|grant|revoke".
func (a *App) groupPermissions(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println(usageGroupPerms)
		return nil
	}
	groupID, ok := parseID(args[1:2])
	if !ok {
		a.println(usageGroupPerms)
		return nil
	}
	perms := a.session.Status().Permissions

	switch args[0] {
	case "show":
		rows, err := a.groupPerms.Show(ctx, groupID)
		if err != nil {
			return err
		}
		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			mark := ""
			if r.Granted {
				mark = groupPermissionsMark
			}
			table = append(table, []string{strconv.FormatInt(r.Permission.ID, 10), r.Permission.CodeName, r.Permission.Name, mark})
		}
		a.renderTable([]string{"شناسه", "کد", "عنوان", ""}, table)
		return nil

	case "grant", "revoke":
		if !perms.Has(permissions.ChangeGroup) {
			return errForbidden
		}
		codes := args[2:]
		if len(codes) == 0 {
			a.println(usageGroupPerms)
			return nil
		}
		edit := a.groupPerms.Grant
		if args[0] == "revoke" {
			edit = a.groupPerms.Revoke
		}
		if _, err := edit(ctx, groupID, codes...); err != nil {
			if errors.Is(err, services.ErrUnknownCodename) {
				a.println(msgUnknownCodename, strings.TrimPrefix(err.Error(), services.ErrUnknownCodename.Error()+": "))
				return nil
			}
			return err
		}
		a.println(msgPermissionsSaved)
		return nil
	}

	a.println(usageGroupPerms)
	return nil
}

// passwd handles "users passwd <id>": the new password is read twice
// without echo.
func (a *App) passwd(ctx context.Context, args []string) error {
	id, ok := parseID(args)
	if !ok {
		a.println(usagePasswd)
		return nil
	}
	if !a.session.Status().Permissions.Has(permissions.ChangeUser) {
		return errForbidden
	}

	pw, err := getPassword(a.out, "رمز عبور جدید")
	if err != nil {
		return inputErr(err)
	}
	defer common.WipeByteArray(pw)

	again, err := getPassword(a.out, "تکرار رمز عبور")
	if err != nil {
		return inputErr(err)
	}
	defer common.WipeByteArray(again)

	switch {
	case len(pw) == 0:
		return common.ErrValidation
	case !bytes.Equal(pw, again):
		a.println(msgPasswordMismatch)
		return nil
	case len([]rune(string(pw))) < minPasswordLength:
		a.println(msgPasswordTooShort)
		return nil
	}

	if err := a.users.ChangePassword(ctx, id, pw); err != nil {
		return err
	}
	a.println(msgPasswordChanged)
	return nil
}
