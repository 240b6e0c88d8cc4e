package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

// Requester is the part of the REST client used by services.
type Requester interface {
	Do(ctx context.Context, req client.Request, out any) error
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// ListQuery selects one page of a collection. Zero values are omitted from
// the request.
type ListQuery struct {
	Page    int
	Search  string
	Filters url.Values
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	for k, vals := range q.Filters {
		v[k] = append([]string(nil), vals...)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// Resource is a REST collection at Path with items at Path/{id}/.
type Resource[T models.Record] struct {
	api    Requester
	path   string
	logger logging.Logger
}

func NewResource[T models.Record](api Requester, path string, logger logging.Logger) *Resource[T] {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resource[T]{api: api, path: "/" + strings.Trim(path, "/") + "/", logger: logger}
}

func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) ItemPath(id int64) string {
	return r.path + strconv.FormatInt(id, 10) + "/"
}

// List fetches one page. An unrecognized body is logged and yields an empty
// page rather than an error.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) (models.Page[T], error) {
	body, err := r.api.Get(ctx, r.path, q.values())
	if err != nil {
		return models.Page[T]{}, err
	}

	page, err := models.DecodePage[T](body)
	if errors.Is(err, models.ErrUnrecognizedShape) {
		r.logger.Warn(ctx, "unexpected list response", "path", r.path, "err", err)
		return page, nil
	}
	return page, err
}

func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var out T
	err := r.api.Do(ctx, client.Request{Method: http.MethodPost, Path: r.path, Body: payload}, &out)
	if err != nil {
		return out, fmt.Errorf("create %s: %w", r.path, err)
	}
	return out, nil
}

// Update sends a partial update (PATCH).
func (r *Resource[T]) Update(ctx context.Context, id int64, payload any) (T, error) {
	var out T
	err := r.api.Do(ctx, client.Request{Method: http.MethodPatch, Path: r.ItemPath(id), Body: payload}, &out)
	if err != nil {
		return out, fmt.Errorf("update %s: %w", r.ItemPath(id), err)
	}
	return out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if err := r.api.Do(ctx, client.Request{Method: http.MethodDelete, Path: r.ItemPath(id)}, nil); err != nil {
		return fmt.Errorf("delete %s: %w", r.ItemPath(id), err)
	}
	return nil
}
