package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_PathNormalized(t *testing.T) {
	r := NewResource[models.UsageType](newFakeAPI(), "usagetypes", nil)
	assert.Equal(t, "/usagetypes/", r.Path())
	assert.Equal(t, "/usagetypes/12/", r.ItemPath(12))
}

func TestResource_ListQuery(t *testing.T) {
	api := newFakeAPI().on("GET", "/navymain/", `{"results":[{"id":1,"name":"X"}],"next":"http://h/api/navymain/?page=3","previous":null,"count":21}`)
	r := NewResource[models.NavyMain](api, NavyMainPath, nil)

	page, err := r.List(context.Background(), ListQuery{Page: 2, Search: "  volvo "})
	require.NoError(t, err)

	assert.Equal(t, url.Values{"page": {"2"}, "search": {"volvo"}}, api.last().Query)
	assert.Len(t, page.Results, 1)
	assert.True(t, page.HasNext())
	assert.Equal(t, 21, page.Count)
}

func TestResource_ListFiltersAreCopied(t *testing.T) {
	api := newFakeAPI().on("GET", "/regions/cities/", `[]`)
	r := NewResource[models.City](api, CitiesPath, nil)
	filters := url.Values{"province_id": {"4"}}

	_, err := r.List(context.Background(), ListQuery{Filters: filters})
	require.NoError(t, err)
	assert.Equal(t, url.Values{"province_id": {"4"}}, api.last().Query)
	assert.Equal(t, url.Values{"province_id": {"4"}}, filters)
}

func TestResource_ListUnrecognizedShapeIsEmpty(t *testing.T) {
	api := newFakeAPI().on("GET", "/usagetypes/", `{"message":"ok"}`)
	r := NewResource[models.UsageType](api, UsageTypesPath, nil)

	page, err := r.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Results)
}

func TestResource_ListError(t *testing.T) {
	api := newFakeAPI().fail("GET", "/usagetypes/", fmt.Errorf("GET /usagetypes/: %w", client.ErrUnavailable))
	r := NewResource[models.UsageType](api, UsageTypesPath, nil)

	_, err := r.List(context.Background(), ListQuery{})
	require.ErrorIs(t, err, client.ErrUnavailable)
}

func TestResource_CreateUpdateDelete(t *testing.T) {
	api := newFakeAPI().
		on("POST", "/usagetypes/", `{"id":5,"name":"Taxi"}`).
		on("PATCH", "/usagetypes/5/", `{"id":5,"name":"Cab"}`)
	r := NewResource[models.UsageType](api, UsageTypesPath, nil)
	ctx := context.Background()

	created, err := r.Create(ctx, map[string]string{"name": "Taxi"})
	require.NoError(t, err)
	assert.Equal(t, models.UsageType{ID: 5, Name: "Taxi"}, created)
	assert.JSONEq(t, `{"name":"Taxi"}`, api.last().Body)

	updated, err := r.Update(ctx, 5, map[string]string{"name": "Cab"})
	require.NoError(t, err)
	assert.Equal(t, "Cab", updated.Name)
	assert.Equal(t, http.MethodPatch, api.last().Method)

	require.NoError(t, r.Delete(ctx, 5))
	assert.Equal(t, call{Method: http.MethodDelete, Path: "/usagetypes/5/"}, api.last())
}

func TestResource_CreateErrorKeepsHTTPError(t *testing.T) {
	he := &client.HTTPError{Status: http.StatusBadRequest, Fields: map[string][]string{"name": {"exists"}}}
	api := newFakeAPI().fail("POST", "/groups/", he)
	r := NewResource[models.Group](api, GroupsPath, nil)

	_, err := r.Create(context.Background(), map[string]string{"name": "Ops"})
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))
}
