package screens

import (
	"github.com/dmitrijs2005/fleetadmin/internal/client/cache"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
)

// Action is an operation a screen offers.
type Action int

const (
	ActionView Action = iota
	ActionAdd
	ActionChange
	ActionDelete
)

// Mutations lists the cache mutations reported after each successful write.
type Mutations struct {
	Create cache.Mutation
	Update cache.Mutation
	Delete cache.Mutation
}

// Definition declares one entity screen.
type Definition[T models.Record] struct {
	Route string
	Title string
	Path  string

	Paginated  bool
	Searchable bool
	ReadOnly   bool

	View, Add, Change, Delete []permissions.Permission

	Fields []Field
	// Cascade, when set, builds the dependent selections filled before
	// Fields. Each slot writes its selection into the form.
	Cascade func() *Cascade
	// Payload validates the form and builds the request body.
	Payload func(f Form, creating bool) (any, error)
	// Prefill turns an existing record into form values for editing.
	Prefill func(T) Form

	Columns []string
	Row     func(T) []string

	Mutations Mutations
}

func (d Definition[T]) required(a Action) []permissions.Permission {
	switch a {
	case ActionAdd:
		return d.Add
	case ActionChange:
		return d.Change
	case ActionDelete:
		return d.Delete
	default:
		return d.View
	}
}
