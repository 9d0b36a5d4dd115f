package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
	"nestadmin/internal/api"
)

type trackKind int

const (
	trackMusic trackKind = iota
	trackSleepSongs
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	cmd := newResourceCommand(ctx, resourceDef[admin.User]{
		use:      "users",
		singular: "user",
		aliases:  []string{"user"},
		filters:  []string{admin.FilterStatus},
		resource: func(s *admin.Service) *admin.Resource[admin.User] { return s.Users },
		headers:  []string{"ID", "Name", "Email", "Role", "Status", "Last Login"},
		row: func(u admin.User) []string {
			return []string{u.Key(), u.Name, u.Email, u.Role, u.Status, u.LastLogin}
		},
		noCreate: true,
	})
	cmd.AddCommand(newUsersBulkUpdateCommand(ctx))
	cmd.AddCommand(newUsersBulkDeleteCommand(ctx))
	return cmd
}

func newUsersBulkUpdateCommand(ctx *commandContext) *cobra.Command {
	payload := &payloadFlags{}
	cmd := &cobra.Command{
		Use:   "bulk-update <id>...",
		Short: "Apply the same changes to several users",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := payload.object(ctx.stdin)
			if err != nil {
				return err
			}
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				result, err := svc.BulkUpdateUsers(cmd.Context(), splitIDs(args), updates)
				if err != nil {
					return err
				}
				return renderBulkResult(cmd, ctx, "updated", result, result.Modified)
			})
		},
	}
	payload.register(cmd)
	return cmd
}

func newUsersBulkDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-delete <id>...",
		Short: "Delete several users in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				result, err := svc.BulkDeleteUsers(cmd.Context(), splitIDs(args))
				if err != nil {
					return err
				}
				return renderBulkResult(cmd, ctx, "deleted", result, result.Deleted)
			})
		},
	}
}

func renderBulkResult(cmd *cobra.Command, ctx *commandContext, verb string, result admin.BulkResult, count int) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	if result.Message != "" {
		fmt.Fprintln(out, result.Message)
		return nil
	}
	fmt.Fprintf(out, "%d user(s) %s\n", count, verb)
	return nil
}

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	return newResourceCommand(ctx, resourceDef[admin.Course]{
		use:      "courses",
		singular: "course",
		aliases:  []string{"course"},
		filters:  []string{admin.FilterCategory, admin.FilterDifficulty, admin.FilterTheme},
		resource: func(s *admin.Service) *admin.Resource[admin.Course] { return s.Courses },
		headers:  []string{"ID", "Name", "Category", "Difficulty", "Voices", "Tags"},
		aligns:   []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		row: func(c admin.Course) []string {
			return []string{c.Key(), c.Name, c.Category, c.Difficulty, strconv.Itoa(len(c.VoiceVersions)), strings.Join(c.Tags, ", ")}
		},
		create: func(cctx context.Context, svc *admin.Service, payload *payloadFlags, ctx *commandContext) (admin.Course, error) {
			var course admin.Course
			if err := payload.decode(ctx.stdin, &course); err != nil {
				return admin.Course{}, err
			}
			return svc.CreateCourse(cctx, course)
		},
		update: func(cctx context.Context, svc *admin.Service, id string, payload *payloadFlags, ctx *commandContext) (admin.Course, error) {
			changes, err := payload.object(ctx.stdin)
			if err != nil {
				return admin.Course{}, err
			}
			existing, err := svc.Courses.Get(cctx, id)
			if err != nil {
				return admin.Course{}, err
			}
			merged := structToMap(existing)
			maps.Copy(merged, changes)
			course, err := remarshal[admin.Course](merged)
			if err != nil {
				return admin.Course{}, err
			}
			return svc.UpdateCourse(cctx, id, course)
		},
	})
}

func newThemesCommand(ctx *commandContext) *cobra.Command {
	return newResourceCommand(ctx, resourceDef[admin.Theme]{
		use:      "themes",
		singular: "theme",
		aliases:  []string{"theme"},
		filters:  []string{admin.FilterStatus},
		resource: func(s *admin.Service) *admin.Resource[admin.Theme] { return s.Themes },
		headers:  []string{"ID", "Name", "Status", "Description"},
		row: func(t admin.Theme) []string {
			return []string{t.Key(), t.Name, t.Status, truncate(t.Description, maxCellWidth)}
		},
	})
}

func newTrackCommand(ctx *commandContext, kind trackKind) *cobra.Command {
	def := resourceDef[admin.Track]{
		use:      "music",
		singular: "track",
		filters:  []string{admin.FilterMood, admin.FilterArtist, admin.FilterTheme, admin.FilterCategory},
		resource: func(s *admin.Service) *admin.Resource[admin.Track] { return s.Music },
		headers:  []string{"ID", "Title", "Artist", "Mood", "Category", "Length"},
		aligns:   []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
		row: func(t admin.Track) []string {
			return []string{t.Key(), t.Title, t.Artist, t.Mood, t.Category, formatDuration(t.Duration)}
		},
	}
	if kind == trackSleepSongs {
		def.use = "sleep-songs"
		def.singular = "sleep song"
		def.aliases = []string{"sleep-song", "sleepsongs"}
		def.resource = func(s *admin.Service) *admin.Resource[admin.Track] { return s.SleepSongs }
	}
	return newResourceCommand(ctx, def)
}

func remarshal[T any](value map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(value)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &api.Error{Kind: api.KindValidation, Message: fmt.Sprintf("invalid fields: %v", err)}
	}
	return out, nil
}
