package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
)

type listFlags struct {
	page    int
	limit   int
	search  string
	filters map[string]*string
}

func (l *listFlags) register(cmd *cobra.Command, filters []string, withSearch bool) {
	cmd.Flags().IntVar(&l.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&l.limit, "limit", 20, "Entries per page")
	if withSearch {
		cmd.Flags().StringVar(&l.search, "search", "", "Free-text search")
	}
	l.filters = make(map[string]*string, len(filters))
	for _, name := range filters {
		value := new(string)
		l.filters[name] = value
		cmd.Flags().StringVar(value, name, "", fmt.Sprintf("Filter by %s", name))
	}
}

func (l *listFlags) params() admin.ListParams {
	params := admin.ListParams{Page: l.page, Limit: l.limit, Search: l.search}
	for name, value := range l.filters {
		if value == nil || *value == "" {
			continue
		}
		if params.Filters == nil {
			params.Filters = make(map[string]string)
		}
		params.Filters[name] = *value
	}
	return params
}

func printPageFooter[T any](cmd *cobra.Command, page admin.Page[T]) {
	if page.TotalPages <= 1 && page.Total == len(page.Items) {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d total)\n", max(page.Page, 1), page.TotalPages, page.Total)
}

type pageView[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	Limit      int `json:"limit,omitempty"`
}

func viewPage[T any](page admin.Page[T]) pageView[T] {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return pageView[T]{Items: items, Total: page.Total, TotalPages: page.TotalPages, Page: page.Page, Limit: page.Limit}
}
