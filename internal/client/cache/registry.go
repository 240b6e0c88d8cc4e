package cache

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Mutation names a server-side change that makes cached data stale.
type Mutation string

const (
	GroupCreated          Mutation = "group_created"
	GroupUpdated          Mutation = "group_updated"
	GroupDeleted          Mutation = "group_deleted"
	GroupPermissionsSaved Mutation = "group_permissions_saved"
)

// Resource describes one cached backend resource. Keys are only ever built
// through Key so that readers and invalidators agree on them.
type Resource struct {
	Name          string
	Path          string
	DefaultTTL    time.Duration
	Parametric    bool
	InvalidatedBy []Mutation
}

var (
	Permissions = Resource{
		Name:       "permissions",
		Path:       "/permissions/",
		DefaultTTL: 60 * time.Minute,
	}
	Groups = Resource{
		Name:          "groups",
		Path:          "/groups/",
		DefaultTTL:    20 * time.Minute,
		InvalidatedBy: []Mutation{GroupCreated, GroupUpdated, GroupDeleted},
	}
	GroupPermissions = Resource{
		Name:          "group_permissions",
		Path:          "/groups/%d/permissions/",
		DefaultTTL:    5 * time.Minute,
		Parametric:    true,
		InvalidatedBy: []Mutation{GroupPermissionsSaved, GroupDeleted},
	}
)

// Registry lists every cached resource.
var Registry = []Resource{Permissions, Groups, GroupPermissions}

// Key returns the cache key for the resource, e.g. "groups" or
// "group_permissions:7".
func (r Resource) Key(ids ...int64) string {
	if len(ids) == 0 {
		return r.Name
	}
	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, r.Name)
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ":")
}

func (r Resource) invalidatedBy(m Mutation) bool {
	return slices.Contains(r.InvalidatedBy, m)
}

// TTL returns the effective TTL of r, honouring WithTTL overrides.
func (l *Layer) TTL(r Resource) time.Duration {
	if ttl, ok := l.ttls[r.Name]; ok {
		return ttl
	}
	return r.DefaultTTL
}

// Load reads r through the cache using its effective TTL. path is the
// concrete request path (parametric resources embed the id in it).
func Load[T any](ctx context.Context, l *Layer, r Resource, path string, ids ...int64) (T, error) {
	return Get[T](ctx, l, r.Key(ids...), path, l.TTL(r))
}

// Invalidated removes every registered key made stale by m. For parametric
// resources ids selects the instance; without ids all instances are dropped.
func (l *Layer) Invalidated(ctx context.Context, m Mutation, ids ...int64) error {
	var errs []error
	for _, r := range Registry {
		if !r.invalidatedBy(m) {
			continue
		}

		var err error
		switch {
		case r.Parametric && len(ids) == 0:
			err = l.InvalidatePrefix(ctx, r.Name+":")
		case r.Parametric:
			err = l.Invalidate(ctx, r.Key(ids...))
		default:
			err = l.Invalidate(ctx, r.Key())
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		l.logger.Debug(ctx, "cache invalidated", "resource", r.Name, "mutation", string(m))
	}
	return errors.Join(errs...)
}
