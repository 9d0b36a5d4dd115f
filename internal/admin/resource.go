package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"nestadmin/internal/api"
)

// Client is the subset of the request client the feature services use.
type Client interface {
	Get(ctx context.Context, path string, query map[string]string, out any, opts ...api.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
	Put(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
	Delete(ctx context.Context, path string, out any, opts ...api.CallOption) error
	Do(ctx context.Context, req api.Request) (json.RawMessage, error)
}

// ErrUnsupported is returned for actions a resource does not expose.
var ErrUnsupported = errors.New("action not supported for resource")

// maxParallelDeletes bounds DeleteMany fan-out.
const maxParallelDeletes = 4

// Resource performs CRUD for one admin collection.
type Resource[T any] struct {
	client   Client
	name     string
	listKey  string
	itemKey  string
	creating bool
}

func newResource[T any](client Client, name, listKey, itemKey string) *Resource[T] {
	return &Resource[T]{
		client:   client,
		name:     name,
		listKey:  listKey,
		itemKey:  itemKey,
		creating: name != api.ResourceUsers,
	}
}

// Name returns the catalog resource name.
func (r *Resource[T]) Name() string {
	return r.name
}

// CanCreate reports whether the resource has a create endpoint.
func (r *Resource[T]) CanCreate() bool {
	return r.creating
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, params ListParams) (Page[T], error) {
	path, err := api.ResourcePath(r.name, api.ActionList)
	if err != nil {
		return Page[T]{}, err
	}
	var raw json.RawMessage
	if err := r.client.Get(ctx, path, params.Query(), &raw); err != nil {
		return Page[T]{}, err
	}
	page, err := decodeList[T](raw, r.listKey)
	if err != nil {
		return Page[T]{}, err
	}
	if page.Page == 0 {
		page.Page = max(params.Page, 1)
	}
	if page.Limit == 0 {
		page.Limit = params.Limit
	}
	return page, nil
}

// Search lists entries matching term, keeping any other params.
func (r *Resource[T]) Search(ctx context.Context, term string, params ListParams) (Page[T], error) {
	params.Search = term
	return r.List(ctx, params)
}

// Get fetches one entry by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	path, err := api.ResourcePath(r.name, api.ActionDetail, id)
	if err != nil {
		return zero, err
	}
	var raw json.RawMessage
	if err := r.client.Get(ctx, path, nil, &raw); err != nil {
		return zero, err
	}
	return r.decodeItem(raw)
}

// Create posts a new entry and returns the stored copy.
func (r *Resource[T]) Create(ctx context.Context, item any) (T, error) {
	var zero T
	if !r.creating {
		return zero, fmt.Errorf("%s create: %w", r.name, ErrUnsupported)
	}
	path, err := api.ResourcePath(r.name, api.ActionCreate)
	if err != nil {
		return zero, err
	}
	var raw json.RawMessage
	if err := r.client.Post(ctx, path, item, &raw); err != nil {
		return zero, err
	}
	return r.decodeItem(raw)
}

// Update replaces fields of an existing entry. changes may be a full T or a
// partial map.
func (r *Resource[T]) Update(ctx context.Context, id string, changes any) (T, error) {
	var zero T
	path, err := api.ResourcePath(r.name, api.ActionUpdate, id)
	if err != nil {
		return zero, err
	}
	var raw json.RawMessage
	if err := r.client.Put(ctx, path, changes, &raw); err != nil {
		return zero, err
	}
	return r.decodeItem(raw)
}

// Delete removes one entry.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path, err := api.ResourcePath(r.name, api.ActionDelete, id)
	if err != nil {
		return err
	}
	return r.client.Delete(ctx, path, nil)
}

// DeleteMany deletes ids concurrently and returns the ids that were removed
// along with the first error.
func (r *Resource[T]) DeleteMany(ctx context.Context, ids []string) ([]string, error) {
	results := make([]bool, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelDeletes)
	for i, id := range ids {
		group.Go(func() error {
			if err := r.Delete(groupCtx, id); err != nil {
				return fmt.Errorf("delete %s %s: %w", r.name, id, err)
			}
			results[i] = true
			return nil
		})
	}
	err := group.Wait()
	deleted := make([]string, 0, len(ids))
	for i, ok := range results {
		if ok {
			deleted = append(deleted, ids[i])
		}
	}
	return deleted, err
}

func (r *Resource[T]) decodeItem(raw json.RawMessage) (T, error) {
	var item T
	if err := unwrapInto(raw, []string{r.itemKey, "data"}, &item); err != nil {
		return item, fmt.Errorf("decode %s: %w", r.name, err)
	}
	return item, nil
}
