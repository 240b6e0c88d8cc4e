package screens

import (
	"context"
	"strconv"
	"strings"
)

// Form holds raw form input keyed by field name. Choice fields store the
// selected id; their display label is kept under LabelKey(name).
type Form map[string]string

func LabelKey(name string) string { return name + "#label" }

func (f Form) Get(name string) string { return strings.TrimSpace(f[name]) }

func (f Form) Label(name string) string { return f[LabelKey(name)] }

// Int returns 0 for missing or malformed values.
func (f Form) Int(name string) int64 {
	n, err := strconv.ParseInt(f.Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (f Form) Bool(name string) bool {
	switch strings.ToLower(f.Get(name)) {
	case "1", "true", "y", "yes", "بله":
		return true
	}
	return false
}

// IDs parses a comma separated id list, skipping malformed entries.
func (f Form) IDs(name string) []int64 {
	out := []int64{}
	for _, part := range strings.Split(f.Get(name), ",") {
		if n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func (f Form) Clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// FieldKind selects how the console prompts for a field.
type FieldKind int

const (
	Text FieldKind = iota
	Password
	Bool
	Choice
	MultiChoice
)

// Option is one selectable value of a choice field.
type Option struct {
	Value string
	Label string
}

// OptionsFunc loads the options of a choice field. It sees the form filled
// so far.
type OptionsFunc func(ctx context.Context, f Form) ([]Option, error)

type Field struct {
	Name       string
	Label      string
	Kind       FieldKind
	Optional   bool
	CreateOnly bool
	Options    OptionsFunc
}

func idOption(id int64, label string) Option {
	return Option{Value: strconv.FormatInt(id, 10), Label: label}
}

func staticOptions(opts ...Option) OptionsFunc {
	return func(context.Context, Form) ([]Option, error) { return opts, nil }
}
