package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
)

func newNotificationsCommand(ctx *commandContext) *cobra.Command {
	notificationsCmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notification"},
		Short:   "Operator notifications",
	}

	flags := &listFlags{}
	var unreadOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				params := flags.params()
				if unreadOnly {
					if params.Filters == nil {
						params.Filters = map[string]string{}
					}
					params.Filters["read"] = "false"
				}
				page, err := svc.Notifications(cmd.Context(), params)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, viewPage(page))
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(page.Items))
				for _, n := range page.Items {
					marker := colorize(out, ansiGreen, "new")
					if n.Read {
						marker = ""
					}
					rows = append(rows, []string{n.Key(), marker, n.Title, truncate(n.Message, maxCellWidth), n.CreatedAt})
				}
				printTable(cmd, []string{"ID", "", "Title", "Message", "Created"}, rows, nil)
				printPageFooter(cmd, page)
				return nil
			})
		},
	}
	flags.register(listCmd, nil, false)
	listCmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	notificationsCmd.AddCommand(listCmd)

	notificationsCmd.AddCommand(&cobra.Command{
		Use:   "read <id>...",
		Short: "Mark notifications as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				for _, id := range splitIDs(args) {
					if err := svc.MarkNotificationRead(cmd.Context(), id); err != nil {
						return fmt.Errorf("mark %s read: %w", id, err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Marked as read")
				return nil
			})
		},
	})

	notificationsCmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				if err := svc.MarkAllNotificationsRead(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked as read")
				return nil
			})
		},
	})

	notificationsCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notifications",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				for _, id := range splitIDs(args) {
					if err := svc.DeleteNotification(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete notification %s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted notification %s\n", id)
				}
				return nil
			})
		},
	})

	return notificationsCmd
}
