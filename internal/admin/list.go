package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnexpectedFormat is returned when a response matches none of the
// known shapes.
var ErrUnexpectedFormat = errors.New("invalid response format from server")

// List filters understood by the backend.
const (
	FilterTheme      = "theme"
	FilterDifficulty = "difficulty"
	FilterMood       = "mood"
	FilterArtist     = "artist"
	FilterStatus     = "status"
	FilterCategory   = "category"
)

// Filters lists every filter name the CLI accepts.
var Filters = []string{FilterTheme, FilterDifficulty, FilterMood, FilterArtist, FilterStatus, FilterCategory}

// ListParams describes a page request. Zero and empty values are omitted
// from the query string.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Query flattens the params into the map the request client expects.
func (p ListParams) Query() map[string]string {
	query := make(map[string]string)
	if p.Page > 0 {
		query["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		query["limit"] = strconv.Itoa(p.Limit)
	}
	if search := strings.TrimSpace(p.Search); search != "" {
		query["search"] = search
	}
	for key, value := range p.Filters {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		query[key] = value
	}
	if len(query) == 0 {
		return nil
	}
	return query
}

// Page is one page of a collection.
type Page[T any] struct {
	Items      []T
	Total      int
	TotalPages int
	Page       int
	Limit      int
}

type pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

var envelopeKeys = []string{"items", "data", "results"}

// decodeList accepts a bare array or an object holding the collection under
// key (or a generic envelope key) plus an optional pagination object.
func decodeList[T any](raw json.RawMessage, key string) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Page[T]{Items: []T{}, TotalPages: 1}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode %s list: %w", key, err)
		}
		return Page[T]{Items: items, Total: len(items), TotalPages: 1}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return Page[T]{}, fmt.Errorf("decode %s list: %w", key, err)
	}

	keys := append([]string{key}, envelopeKeys...)
	for _, candidate := range keys {
		value, ok := envelope[candidate]
		if !ok {
			continue
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 {
			continue
		}
		switch value[0] {
		case '[':
			var items []T
			if err := json.Unmarshal(value, &items); err != nil {
				return Page[T]{}, fmt.Errorf("decode %s list: %w", key, err)
			}
			page := Page[T]{Items: items}
			applyPagination(&page, envelope)
			return page, nil
		case '{':
			// Nested envelope such as {"data": {"courses": [...], "pagination": {...}}}.
			if candidate != key {
				if page, err := decodeList[T](value, key); err == nil {
					return page, nil
				}
			}
		}
	}
	return Page[T]{}, fmt.Errorf("%s list: %w", key, ErrUnexpectedFormat)
}

func applyPagination[T any](page *Page[T], envelope map[string]json.RawMessage) {
	var meta pagination
	if raw, ok := envelope["pagination"]; ok {
		_ = json.Unmarshal(raw, &meta)
	}
	if meta.Total == 0 {
		if raw, ok := envelope["total"]; ok {
			_ = json.Unmarshal(raw, &meta.Total)
		}
	}
	page.Total = meta.Total
	if page.Total == 0 {
		page.Total = len(page.Items)
	}
	page.TotalPages = meta.TotalPages
	if page.TotalPages <= 0 {
		page.TotalPages = 1
	}
	page.Page = meta.Page
	page.Limit = meta.Limit
}

// unwrapInto decodes raw into out, first looking inside any of the given
// envelope keys that hold an object.
func unwrapInto(raw json.RawMessage, keys []string, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			for _, key := range keys {
				inner := bytes.TrimSpace(envelope[key])
				if len(inner) > 0 && inner[0] == '{' {
					return json.Unmarshal(inner, out)
				}
			}
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}
	return nil
}

// SortedFilterNames returns the filter names present in filters, sorted.
func SortedFilterNames(filters map[string]string) []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
