package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	var withAnalytics bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show aggregate dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				if !withAnalytics {
					stats, err := svc.Dashboard(cmd.Context())
					if err != nil {
						return err
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, stats)
					}
					printKeyValues(cmd, stats)
					return nil
				}

				overview, err := svc.Overview(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"dashboard":   overview.Dashboard,
						"users":       overview.Users,
						"courses":     overview.Courses,
						"performance": overview.Performance,
						"warnings":    overview.Warnings,
					})
				}
				out := cmd.OutOrStdout()
				sections := []struct {
					title string
					stats admin.Stats
				}{
					{"Dashboard", overview.Dashboard},
					{"Users", overview.Users},
					{"Courses", overview.Courses},
					{"Performance", overview.Performance},
				}
				for _, section := range sections {
					if section.stats == nil {
						continue
					}
					fmt.Fprintln(out, section.title)
					printKeyValues(cmd, section.stats)
				}
				for _, warning := range overview.Warnings {
					fmt.Fprintf(ctx.stderr, "warning: %s\n", warning)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withAnalytics, "analytics", false, "Also load user, course, and performance analytics")
	return cmd
}

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Usage and performance analytics",
	}

	sections := []struct {
		use   string
		short string
		fetch func(*admin.Service) func(context.Context, map[string]string) (admin.Stats, error)
	}{
		{"users", "User statistics", func(s *admin.Service) func(context.Context, map[string]string) (admin.Stats, error) {
			return s.UserAnalytics
		}},
		{"courses", "Course statistics", func(s *admin.Service) func(context.Context, map[string]string) (admin.Stats, error) {
			return s.CourseAnalytics
		}},
		{"performance", "Performance metrics", func(s *admin.Service) func(context.Context, map[string]string) (admin.Stats, error) {
			return s.PerformanceAnalytics
		}},
	}

	for _, section := range sections {
		var period, from, to string
		cmd := &cobra.Command{
			Use:   section.use,
			Short: section.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				query := map[string]string{}
				for key, value := range map[string]string{"period": period, "startDate": from, "endDate": to} {
					if value != "" {
						query[key] = value
					}
				}
				return ctx.withAdmin(cmd, func(svc *admin.Service) error {
					stats, err := section.fetch(svc)(cmd.Context(), query)
					if err != nil {
						return err
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, stats)
					}
					printKeyValues(cmd, stats)
					return nil
				})
			},
		}
		cmd.Flags().StringVar(&period, "period", "", "Aggregation period (e.g. 7d, 30d)")
		cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
		analyticsCmd.AddCommand(cmd)
	}

	return analyticsCmd
}
