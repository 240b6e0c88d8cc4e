package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/client/navigation"
	"github.com/dmitrijs2005/fleetadmin/internal/client/screens"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
)

const (
	msgCreated  = "با موفقیت ثبت شد."
	msgUpdated  = "تغییرات ذخیره شد."
	msgDeleted  = "حذف شد."
	msgReadOnly = "این بخش فقط قابل مشاهده است."
	msgEmpty    = "موردی برای نمایش وجود ندارد."
)

// errForbidden is reported when the session lacks the permissions of a
// route or action.
var errForbidden = errors.New("forbidden")

// Route dispatches "<route> ..." commands. The route's menu permissions are
// checked first, then the permissions of the requested action.
func (a *App) Route(ctx context.Context, route string, args []string) error {
	item, ok := navigation.Find(navigation.Menu, route)
	if !ok {
		return errUnknownRoute
	}
	if !a.session.Status().Permissions.HasAll(item.Required...) {
		return errForbidden
	}

	switch route {
	case navigation.RouteDashboard:
		return a.Menu(ctx)
	case navigation.RouteGroupPermissions:
		return a.groupPermissions(ctx, args)
	case navigation.RouteUsers:
		if len(args) > 0 && args[0] == "passwd" {
			return a.passwd(ctx, args[1:])
		}
	}

	s, ok := a.screens[route]
	if !ok {
		return errUnknownRoute
	}
	return a.screenCommand(ctx, s, args)
}

func (a *App) screenCommand(ctx context.Context, s screens.Screen, args []string) error {
	action := "list"
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			action, args = args[0], args[1:]
		}
	}

	switch action {
	case "list", "ls":
		return a.list(ctx, s, args)
	case "add":
		return a.add(ctx, s)
	case "edit":
		return a.edit(ctx, s, args)
	case "delete", "rm":
		return a.remove(ctx, s, args)
	}

	a.printf("usage: %s [list [page] [search...] | add | edit <id> | delete <id>]\n", s.Route())
	return nil
}

func (a *App) allowed(s screens.Screen, action screens.Action) error {
	if !a.session.Status().Permissions.HasAll(s.Required(action)...) {
		return errForbidden
	}
	return nil
}

func (a *App) list(ctx context.Context, s screens.Screen, args []string) error {
	if err := a.allowed(s, screens.ActionView); err != nil {
		return err
	}

	page := 1
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			page, args = n, args[1:]
		}
	}
	search := ""
	if s.Searchable() {
		search = strings.Join(args, " ")
	}

	if err := s.List(ctx, page, search); err != nil {
		return err
	}

	a.println(s.Title())
	rows := s.Rows()
	if len(rows) == 0 {
		a.println(msgEmpty)
	} else {
		a.renderTable(s.Columns(), rows)
	}

	if s.Paginated() {
		info := s.PageInfo()
		a.printf("page %d, %d of %d", info.Page, info.Returned, info.Count)
		if info.HasPrev {
			a.printf(", prev: %s list %d", s.Route(), info.Page-1)
		}
		if info.HasNext {
			a.printf(", next: %s list %d", s.Route(), info.Page+1)
		}
		a.println()
	}
	return nil
}

func (a *App) add(ctx context.Context, s screens.Screen) error {
	if s.ReadOnly() {
		a.println(msgReadOnly)
		return nil
	}
	if err := a.allowed(s, screens.ActionAdd); err != nil {
		return err
	}

	f, err := a.fillForm(ctx, s, s.Draft(), true)
	if err != nil {
		return err
	}
	if err := s.Create(ctx, f); err != nil {
		return err
	}
	a.println(msgCreated)
	return nil
}

func (a *App) edit(ctx context.Context, s screens.Screen, args []string) error {
	if s.ReadOnly() {
		a.println(msgReadOnly)
		return nil
	}
	id, ok := parseID(args)
	if !ok {
		a.printf("usage: %s edit <id>\n", s.Route())
		return nil
	}
	if err := a.allowed(s, screens.ActionChange); err != nil {
		return err
	}

	current, ok := s.Prefill(id)
	if !ok {
		info := s.PageInfo()
		if err := s.List(ctx, max(info.Page, 1), info.Search); err != nil {
			return err
		}
		if current, ok = s.Prefill(id); !ok {
			return common.ErrNotFound
		}
	}

	f, err := a.fillForm(ctx, s, current, false)
	if err != nil {
		return err
	}
	if err := s.Update(ctx, id, f); err != nil {
		return err
	}
	a.println(msgUpdated)
	return nil
}

func (a *App) remove(ctx context.Context, s screens.Screen, args []string) error {
	if s.ReadOnly() {
		a.println(msgReadOnly)
		return nil
	}
	id, ok := parseID(args)
	if !ok {
		a.printf("usage: %s delete <id>\n", s.Route())
		return nil
	}
	if err := a.allowed(s, screens.ActionDelete); err != nil {
		return err
	}

	ask := func(prompt string) bool { return confirm(a.reader, prompt, a.out) }
	if err := s.Delete(ctx, id, ask); err != nil {
		return err
	}
	a.println(msgDeleted)
	return nil
}

// fillForm prompts for every value of s: cascade levels first, then the
// plain fields. Values in defaults are offered and kept on empty input.
func (a *App) fillForm(ctx context.Context, s screens.Screen, defaults screens.Form, creating bool) (screens.Form, error) {
	f := screens.Form{}

	if c := s.NewCascade(); c != nil {
		if err := c.Init(ctx); err != nil {
			return nil, err
		}
		// Once a parent differs from its default the children were reset,
		// so their old values are not offered anymore.
		keep := true
		for level := 0; level < c.Len(); level++ {
			slot := c.Slot(level)
			def := ""
			if keep {
				def = defaults.Get(slot.Field)
			}
			value, err := a.choose(slot.Label, c.Options(level), def)
			if err != nil {
				return nil, err
			}
			if value == "" {
				break
			}
			if value != def {
				keep = false
			}
			id, _ := strconv.ParseInt(value, 10, 64)
			if err := c.Select(ctx, level, id); err != nil {
				return nil, err
			}
		}
		c.Fill(f)
	}

	for _, fld := range s.Fields() {
		if fld.CreateOnly && !creating {
			continue
		}
		if err := a.fillField(ctx, fld, f, defaults); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (a *App) fillField(ctx context.Context, fld screens.Field, f, defaults screens.Form) error {
	def := defaults.Get(fld.Name)

	switch fld.Kind {
	case screens.Password:
		pw, err := getPassword(a.out, fld.Label)
		if err != nil {
			return inputErr(err)
		}
		f[fld.Name] = string(pw)
		common.WipeByteArray(pw)

	case screens.Bool:
		shown := "n"
		if defaults.Bool(fld.Name) {
			shown = "y"
		}
		v, err := getTextDefault(a.reader, fld.Label+" (y/n)", shown, a.out)
		if err != nil {
			return inputErr(err)
		}
		f[fld.Name] = strconv.FormatBool(isYes(v))

	case screens.Choice, screens.MultiChoice:
		opts, err := fld.Options(ctx, f)
		if err != nil {
			return err
		}
		if fld.Kind == screens.Choice {
			v, err := a.choose(fld.Label, opts, def)
			if err != nil {
				return err
			}
			f[fld.Name] = v
			f[screens.LabelKey(fld.Name)] = optionLabel(opts, v)
			return nil
		}
		v, err := a.chooseMany(fld.Label, opts, def)
		if err != nil {
			return err
		}
		f[fld.Name] = v

	default:
		v, err := getTextDefault(a.reader, fld.Label, def, a.out)
		if err != nil {
			return inputErr(err)
		}
		f[fld.Name] = v
	}
	return nil
}

// choose lists opts and reads one value. Empty input keeps def; an empty
// result is left for the payload validation to reject.
func (a *App) choose(label string, opts []screens.Option, def string) (string, error) {
	a.printOptions(opts)
	v, err := getTextDefault(a.reader, label, def, a.out)
	if err != nil {
		return "", inputErr(err)
	}
	if v == "" {
		return "", nil
	}
	if !hasOption(opts, v) {
		return "", fmt.Errorf("%w: %s %q", screens.ErrInvalidChoice, label, v)
	}
	return v, nil
}

// chooseMany reads a comma separated list of option values.
func (a *App) chooseMany(label string, opts []screens.Option, def string) (string, error) {
	a.printOptions(opts)
	v, err := getTextDefault(a.reader, label+" (comma separated)", def, a.out)
	if err != nil {
		return "", inputErr(err)
	}

	var picked []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !hasOption(opts, part) {
			return "", fmt.Errorf("%w: %s %q", screens.ErrInvalidChoice, label, part)
		}
		if !slices.Contains(picked, part) {
			picked = append(picked, part)
		}
	}
	return strings.Join(picked, ","), nil
}

func (a *App) printOptions(opts []screens.Option) {
	for _, o := range opts {
		a.printf("  [%s] %s\n", o.Value, o.Label)
	}
}

func hasOption(opts []screens.Option, value string) bool {
	return slices.ContainsFunc(opts, func(o screens.Option) bool { return o.Value == value })
}

func optionLabel(opts []screens.Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}

func parseID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
