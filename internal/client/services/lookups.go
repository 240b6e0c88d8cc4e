package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/fleetadmin/internal/client/cache"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

// Backend collection paths.
const (
	NavyTypesPath          = "/navytypes/"
	NavySizesPath          = "/navysizes/"
	NavyBrandsPath         = "/navybrands/"
	NavyMehvarsPath        = "/navymehvars/"
	NavyMainPath           = "/navymain/"
	ProvincesPath          = "/regions/provinces/"
	CitiesPath             = "/regions/cities/"
	ActivityAreasPath      = "/regions/areas/"
	UsageTypesPath         = "/usagetypes/"
	ActivityCategoriesPath = "/activity-categories/"
	GroupsPath             = "/groups/"
	PermissionsPath        = "/permissions/"
	UsersPath              = "/users/"
	ProviderRequestsPath   = "/service-provider-requests/"
)

// Lookups loads the option lists used by forms and cascades. Groups and
// permission definitions go through the cache.
type Lookups struct {
	api    Requester
	cache  *cache.Layer
	logger logging.Logger
}

func NewLookups(api Requester, c *cache.Layer, logger logging.Logger) *Lookups {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Lookups{api: api, cache: c, logger: logger}
}

func (l *Lookups) NavyTypes(ctx context.Context) ([]models.NavyType, error) {
	return fetchAll[models.NavyType](ctx, l, NavyTypesPath, nil)
}

func (l *Lookups) SizesByType(ctx context.Context, typeID int64) ([]models.NavySize, error) {
	return fetchAll[models.NavySize](ctx, l, NavySizesPath+"by-type/"+strconv.FormatInt(typeID, 10)+"/", nil)
}

func (l *Lookups) BrandsBySize(ctx context.Context, sizeID int64) ([]models.NavyBrand, error) {
	return fetchAll[models.NavyBrand](ctx, l, NavyBrandsPath+"by-size/"+strconv.FormatInt(sizeID, 10)+"/", nil)
}

func (l *Lookups) Provinces(ctx context.Context) ([]models.Province, error) {
	return fetchAll[models.Province](ctx, l, ProvincesPath, nil)
}

func (l *Lookups) Cities(ctx context.Context, provinceID int64) ([]models.City, error) {
	q := url.Values{"province_id": {strconv.FormatInt(provinceID, 10)}}
	return fetchAll[models.City](ctx, l, CitiesPath, q)
}

func (l *Lookups) Groups(ctx context.Context) ([]models.Group, error) {
	return cachedAll[models.Group](ctx, l, cache.Groups, cache.Groups.Path)
}

func (l *Lookups) Permissions(ctx context.Context) ([]models.Permission, error) {
	return cachedAll[models.Permission](ctx, l, cache.Permissions, cache.Permissions.Path)
}

func fetchAll[T any](ctx context.Context, l *Lookups, path string, q url.Values) ([]T, error) {
	body, err := l.api.Get(ctx, path, q)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return decodeList[T](ctx, l.logger, path, body)
}

func cachedAll[T any](ctx context.Context, l *Lookups, r cache.Resource, path string, ids ...int64) ([]T, error) {
	body, err := l.cache.Fetch(ctx, r.Key(ids...), path, nil, l.cache.TTL(r))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return decodeList[T](ctx, l.logger, path, body)
}

func decodeList[T any](ctx context.Context, logger logging.Logger, path string, body []byte) ([]T, error) {
	page, err := models.DecodePage[T](body)
	if errors.Is(err, models.ErrUnrecognizedShape) {
		logger.Warn(ctx, "unexpected list response", "path", path, "err", err)
		return page.Results, nil
	}
	return page.Results, err
}
