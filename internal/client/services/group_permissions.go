package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/client/cache"
	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownCodename = errors.New("unknown permission codename")

// GroupPermissions reads and edits the permission ids assigned to a group.
type GroupPermissions struct {
	api     Requester
	cache   *cache.Layer
	lookups *Lookups
}

func NewGroupPermissions(api Requester, c *cache.Layer, lookups *Lookups) *GroupPermissions {
	return &GroupPermissions{api: api, cache: c, lookups: lookups}
}

func groupPermissionsPath(groupID int64) string {
	return fmt.Sprintf(cache.GroupPermissions.Path, groupID)
}

// Assigned returns the permission ids of the group, through the cache.
func (g *GroupPermissions) Assigned(ctx context.Context, groupID int64) ([]int64, error) {
	gp, err := cache.Load[models.GroupPermissions](ctx, g.cache, cache.GroupPermissions, groupPermissionsPath(groupID), groupID)
	if err != nil {
		return nil, fmt.Errorf("load group %d permissions: %w", groupID, err)
	}
	return gp.Permissions, nil
}

// Save replaces the full permission list of the group.
func (g *GroupPermissions) Save(ctx context.Context, groupID int64, ids []int64) error {
	ids = normalizeIDs(ids)
	req := client.Request{
		Method: http.MethodPost,
		Path:   groupPermissionsPath(groupID),
		Body:   models.GroupPermissions{Permissions: ids},
	}
	if err := g.api.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("save group %d permissions: %w", groupID, err)
	}
	return g.cache.Invalidated(ctx, cache.GroupPermissionsSaved, groupID)
}

// Assignment is a permission definition with its state for one group.
type Assignment struct {
	Permission models.Permission
	Granted    bool
}

// Show lists every permission definition and whether the group holds it.
func (g *GroupPermissions) Show(ctx context.Context, groupID int64) ([]Assignment, error) {
	defs, assigned, err := g.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	out := make([]Assignment, 0, len(defs))
	for _, d := range defs {
		out = append(out, Assignment{Permission: d, Granted: slices.Contains(assigned, d.ID)})
	}
	return out, nil
}

// Grant adds the permissions named by codenames and saves the result.
func (g *GroupPermissions) Grant(ctx context.Context, groupID int64, codenames ...string) ([]int64, error) {
	return g.edit(ctx, groupID, codenames, func(ids []int64, id int64) []int64 {
		return append(ids, id)
	})
}

// Revoke removes the permissions named by codenames and saves the result.
func (g *GroupPermissions) Revoke(ctx context.Context, groupID int64, codenames ...string) ([]int64, error) {
	return g.edit(ctx, groupID, codenames, func(ids []int64, id int64) []int64 {
		return slices.DeleteFunc(ids, func(x int64) bool { return x == id })
	})
}

func (g *GroupPermissions) edit(ctx context.Context, groupID int64, codenames []string, apply func([]int64, int64) []int64) ([]int64, error) {
	defs, assigned, err := g.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]int64, len(defs))
	for _, d := range defs {
		byCode[d.CodeName] = d.ID
	}

	ids := slices.Clone(assigned)
	var unknown []string
	for _, c := range codenames {
		id, ok := byCode[codenameOnly(c)]
		if !ok {
			unknown = append(unknown, c)
			continue
		}
		ids = apply(ids, id)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodename, strings.Join(unknown, ", "))
	}

	ids = normalizeIDs(ids)
	if err := g.Save(ctx, groupID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (g *GroupPermissions) load(ctx context.Context, groupID int64) ([]models.Permission, []int64, error) {
	var (
		defs     []models.Permission
		assigned []int64
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		defs, err = g.lookups.Permissions(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		assigned, err = g.Assigned(ctx, groupID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return defs, assigned, nil
}

// codenameOnly accepts both "add_navytype" and "fleets.add_navytype".
func codenameOnly(code string) string {
	if i := strings.LastIndexByte(code, '.'); i >= 0 {
		return code[i+1:]
	}
	return code
}

func normalizeIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []int64{}
	}
	return out
}
