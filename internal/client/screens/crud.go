package screens

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/fleetadmin/internal/client/cache"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

// PageInfo describes the last loaded page.
type PageInfo struct {
	Page     int
	Search   string
	Count    int
	HasNext  bool
	HasPrev  bool
	Returned int
}

// Screen is the type-erased view of a CrudScreen used by the console.
type Screen interface {
	Route() string
	Title() string
	ReadOnly() bool
	Paginated() bool
	Searchable() bool
	Required(a Action) []permissions.Permission
	Fields() []Field
	NewCascade() *Cascade

	List(ctx context.Context, page int, search string) error
	Columns() []string
	Rows() [][]string
	PageInfo() PageInfo
	Prefill(id int64) (Form, bool)
	Draft() Form

	Create(ctx context.Context, f Form) error
	Update(ctx context.Context, id int64, f Form) error
	Delete(ctx context.Context, id int64, confirm func(prompt string) bool) error
}

// CrudScreen keeps the record list of one entity and applies writes to it
// only after the backend confirmed them.
type CrudScreen[T models.Record] struct {
	def    Definition[T]
	res    *services.Resource[T]
	cache  *cache.Layer
	logger logging.Logger

	gen Generation

	mu    sync.Mutex
	items []T
	info  PageInfo
	draft Form
}

func NewCrudScreen[T models.Record](def Definition[T], api services.Requester, c *cache.Layer, logger logging.Logger) *CrudScreen[T] {
	if logger == nil {
		logger = logging.Nop()
	}
	return &CrudScreen[T]{
		def:    def,
		res:    services.NewResource[T](api, def.Path, logger),
		cache:  c,
		logger: logger.With("screen", def.Route),
	}
}

func (s *CrudScreen[T]) Route() string     { return s.def.Route }
func (s *CrudScreen[T]) Title() string     { return s.def.Title }
func (s *CrudScreen[T]) ReadOnly() bool    { return s.def.ReadOnly }
func (s *CrudScreen[T]) Paginated() bool   { return s.def.Paginated }
func (s *CrudScreen[T]) Searchable() bool  { return s.def.Searchable }
func (s *CrudScreen[T]) Fields() []Field   { return s.def.Fields }
func (s *CrudScreen[T]) Columns() []string { return s.def.Columns }

func (s *CrudScreen[T]) Required(a Action) []permissions.Permission {
	return s.def.required(a)
}

// NewCascade returns a fresh cascade for the form, or nil.
func (s *CrudScreen[T]) NewCascade() *Cascade {
	if s.def.Cascade == nil {
		return nil
	}
	return s.def.Cascade()
}

// List loads one page. If a newer List started meanwhile the result is
// dropped and ErrStale returned.
func (s *CrudScreen[T]) List(ctx context.Context, page int, search string) error {
	tag := s.gen.Next()

	q := services.ListQuery{}
	if s.def.Paginated && page > 0 {
		q.Page = page
	}
	if s.def.Searchable {
		q.Search = search
	}

	res, err := s.res.List(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gen.IsCurrent(tag) {
		return ErrStale
	}
	if err != nil {
		s.logger.Error(ctx, "list failed", "err", err)
		return err
	}

	s.items = res.Results
	s.info = PageInfo{
		Page:     max(page, 1),
		Search:   q.Search,
		Count:    res.Count,
		HasNext:  res.HasNext(),
		HasPrev:  res.Previous != "",
		Returned: len(res.Results),
	}
	return nil
}

// Items returns a copy of the current records.
func (s *CrudScreen[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *CrudScreen[T]) Rows() [][]string {
	items := s.Items()
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, s.def.Row(it))
	}
	return rows
}

func (s *CrudScreen[T]) PageInfo() PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *CrudScreen[T]) find(id int64) (T, int) {
	for i, it := range s.items {
		if it.GetID() == id {
			return it, i
		}
	}
	var zero T
	return zero, -1
}

// Prefill returns the form for editing record id from the loaded list.
func (s *CrudScreen[T]) Prefill(id int64) (Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, i := s.find(id)
	if i < 0 || s.def.Prefill == nil {
		return nil, false
	}
	return s.def.Prefill(it), true
}

// Draft returns the form kept from the last failed Create, if any.
func (s *CrudScreen[T]) Draft() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return s.draft.Clone()
}

func (s *CrudScreen[T]) Create(ctx context.Context, f Form) error {
	if s.def.ReadOnly {
		return fmt.Errorf("%s is read only", s.def.Route)
	}

	payload, err := s.def.Payload(f, true)
	if err != nil {
		s.keepDraft(f)
		return err
	}

	created, err := s.res.Create(ctx, payload)
	if err != nil {
		s.keepDraft(f)
		s.logger.Error(ctx, "create failed", "err", err)
		return err
	}

	s.mu.Lock()
	if created.GetID() != 0 {
		s.items = append(s.items, created)
		s.info.Returned = len(s.items)
	}
	s.draft = nil
	s.mu.Unlock()

	s.invalidate(ctx, s.def.Mutations.Create, created.GetID())
	s.logger.Info(ctx, "record created", "id", created.GetID())
	return nil
}

func (s *CrudScreen[T]) Update(ctx context.Context, id int64, f Form) error {
	if s.def.ReadOnly {
		return fmt.Errorf("%s is read only", s.def.Route)
	}

	payload, err := s.def.Payload(f, false)
	if err != nil {
		return err
	}

	updated, err := s.res.Update(ctx, id, payload)
	if err != nil {
		s.logger.Error(ctx, "update failed", "id", id, "err", err)
		return err
	}

	s.mu.Lock()
	if _, i := s.find(id); i >= 0 && updated.GetID() == id {
		s.items[i] = updated
	}
	s.mu.Unlock()

	s.invalidate(ctx, s.def.Mutations.Update, id)
	s.logger.Info(ctx, "record updated", "id", id)
	return nil
}

// Delete asks confirm first and sends nothing when it returns false or is
// nil.
func (s *CrudScreen[T]) Delete(ctx context.Context, id int64, confirm func(prompt string) bool) error {
	if s.def.ReadOnly {
		return fmt.Errorf("%s is read only", s.def.Route)
	}

	if confirm == nil || !confirm(deletePrompt(id)) {
		return common.ErrCancelled
	}

	if err := s.res.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "delete failed", "id", id, "err", err)
		return err
	}

	s.mu.Lock()
	s.items = slices.DeleteFunc(s.items, func(it T) bool { return it.GetID() == id })
	s.info.Returned = len(s.items)
	s.mu.Unlock()

	s.invalidate(ctx, s.def.Mutations.Delete, id)
	s.logger.Info(ctx, "record deleted", "id", id)
	return nil
}

func (s *CrudScreen[T]) keepDraft(f Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = f.Clone()
}

func (s *CrudScreen[T]) invalidate(ctx context.Context, m cache.Mutation, id int64) {
	if m == "" || s.cache == nil {
		return
	}
	if err := s.cache.Invalidated(ctx, m, id); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "mutation", string(m), "err", err)
	}
}

func deletePrompt(id int64) string {
	return "آیا از حذف رکورد " + strconv.FormatInt(id, 10) + " مطمئن هستید؟"
}
