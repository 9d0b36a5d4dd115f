package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
	"nestadmin/internal/api"
	"nestadmin/internal/fence"
)

// resourceDef describes how one admin collection is surfaced.
type resourceDef[T any] struct {
	use      string
	singular string
	aliases  []string
	filters  []string
	resource func(*admin.Service) *admin.Resource[T]
	headers  []string
	aligns   []columnAlignment
	row      func(T) []string
	noCreate bool
	// create and update default to posting the payload as-is.
	create func(context.Context, *admin.Service, *payloadFlags, *commandContext) (T, error)
	update func(context.Context, *admin.Service, string, *payloadFlags, *commandContext) (T, error)
}

func newResourceCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	root := &cobra.Command{
		Use:     def.use,
		Aliases: def.aliases,
		Short:   fmt.Sprintf("Manage %s", strings.ReplaceAll(def.use, "-", " ")),
	}
	root.AddCommand(newResourceListCommand(ctx, def))
	root.AddCommand(newResourceGetCommand(ctx, def))
	root.AddCommand(newResourceSearchCommand(ctx, def))
	if !def.noCreate {
		root.AddCommand(newResourceCreateCommand(ctx, def))
	}
	root.AddCommand(newResourceUpdateCommand(ctx, def))
	root.AddCommand(newResourceDeleteCommand(ctx, def))
	return root
}

func renderPage[T any](cmd *cobra.Command, ctx *commandContext, def resourceDef[T], page admin.Page[T]) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, viewPage(page))
	}
	rows := make([][]string, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, def.row(item))
	}
	printTable(cmd, def.headers, rows, def.aligns)
	printPageFooter(cmd, page)
	return nil
}

func renderItem[T any](cmd *cobra.Command, ctx *commandContext, item T) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, item)
	}
	printKeyValues(cmd, structToMap(item))
	return nil
}

func newResourceListCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", strings.ReplaceAll(def.use, "-", " ")),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				page, err := def.resource(svc).List(cmd.Context(), flags.params())
				if err != nil {
					return err
				}
				return renderPage(cmd, ctx, def, page)
			})
		},
	}
	flags.register(cmd, def.filters, true)
	return cmd
}

func newResourceGetCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", def.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				item, err := def.resource(svc).Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return renderItem(cmd, ctx, item)
			})
		},
	}
}

func newResourceCreateCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	payload := &payloadFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s", def.singular),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if payload.empty() {
				return fmt.Errorf("no fields given; use --data, --from-file, or --set")
			}
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				var (
					item T
					err  error
				)
				if def.create != nil {
					item, err = def.create(cmd.Context(), svc, payload, ctx)
				} else {
					var body map[string]any
					if body, err = payload.object(ctx.stdin); err == nil {
						item, err = def.resource(svc).Create(cmd.Context(), body)
					}
				}
				if err != nil {
					return err
				}
				return renderItem(cmd, ctx, item)
			})
		},
	}
	payload.register(cmd)
	return cmd
}

func newResourceUpdateCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	payload := &payloadFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s", def.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if payload.empty() {
				return fmt.Errorf("no fields given; use --data, --from-file, or --set")
			}
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				var (
					item T
					err  error
				)
				if def.update != nil {
					item, err = def.update(cmd.Context(), svc, args[0], payload, ctx)
				} else {
					var body map[string]any
					if body, err = payload.object(ctx.stdin); err == nil {
						item, err = def.resource(svc).Update(cmd.Context(), args[0], body)
					}
				}
				if err != nil {
					return err
				}
				return renderItem(cmd, ctx, item)
			})
		},
	}
	payload.register(cmd)
	return cmd
}

func newResourceDeleteCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: fmt.Sprintf("Delete one or more %s entries", def.singular),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := splitIDs(args)
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				deleted, err := def.resource(svc).DeleteMany(cmd.Context(), ids)
				if ctx.jsonOutput() {
					if jsonErr := writeJSON(cmd, map[string]any{"deleted": deleted}); jsonErr != nil {
						return jsonErr
					}
				} else {
					for _, id := range deleted {
						fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", def.singular, id)
					}
				}
				return err
			})
		},
	}
}

func newResourceSearchCommand[T any](ctx *commandContext, def resourceDef[T]) *cobra.Command {
	flags := &listFlags{}
	var interactive bool
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: fmt.Sprintf("Search %s", strings.ReplaceAll(def.use, "-", " ")),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive && len(args) == 0 {
				return fmt.Errorf("search term required (or use --interactive)")
			}
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				res := def.resource(svc)
				if interactive {
					return interactiveSearch(cmd, ctx, def, res, flags.params())
				}
				page, err := res.Search(cmd.Context(), args[0], flags.params())
				if err != nil {
					return err
				}
				return renderPage(cmd, ctx, def, page)
			})
		},
	}
	flags.register(cmd, def.filters, false)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read one query per stdin line; only the latest result is shown")
	return cmd
}

// interactiveSearch issues a query per input line. Each new line cancels the
// query before it, and a response is rendered only if no newer query has
// started, so results never appear out of order.
func interactiveSearch[T any](cmd *cobra.Command, ctx *commandContext, def resourceDef[T], res *admin.Resource[T], params admin.ListParams) error {
	var (
		f       fence.Fence
		wg      sync.WaitGroup
		lastErr error
	)
	defer f.Stop()

	scanner := bufio.NewScanner(ctx.stdin)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		ticket, queryCtx := f.Begin(cmd.Context())
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := res.Search(queryCtx, term, params)
			f.Deliver(ticket, func() {
				lastErr = err
				if err != nil {
					fmt.Fprintf(ctx.stderr, "search %q: %v\n", term, err)
					return
				}
				if !ctx.jsonOutput() {
					fmt.Fprintf(cmd.OutOrStdout(), "Results for %q\n", term)
				}
				if renderErr := renderPage(cmd, ctx, def, page); renderErr != nil {
					lastErr = renderErr
				}
			})
		}()
	}
	wg.Wait()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	if api.IsUnauthorized(lastErr) {
		return lastErr
	}
	return nil
}
