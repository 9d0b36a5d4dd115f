package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"nestadmin/internal/api"
	"nestadmin/internal/logging"
)

// Service groups every admin feature behind one client.
type Service struct {
	client Client
	logger *slog.Logger

	Users      *Resource[User]
	Courses    *Resource[Course]
	Themes     *Resource[Theme]
	Music      *Resource[Track]
	SleepSongs *Resource[Track]
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a Service on top of client.
func New(client Client, opts ...Option) *Service {
	s := &Service{
		client:     client,
		logger:     logging.NewNop(),
		Users:      newResource[User](client, api.ResourceUsers, "users", "user"),
		Courses:    newResource[Course](client, api.ResourceCourses, "courses", "course"),
		Themes:     newResource[Theme](client, api.ResourceThemes, "themes", "theme"),
		Music:      newResource[Track](client, api.ResourceMusic, "music", "music"),
		SleepSongs: newResource[Track](client, api.ResourceSleepSongs, "sleepSongs", "sleepSong"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logging.NewComponentLogger(s.logger, "admin")
	return s
}

// Tracks returns the music or sleep-song resource by catalog name.
func (s *Service) Tracks(resource string) (*Resource[Track], error) {
	switch resource {
	case api.ResourceMusic:
		return s.Music, nil
	case api.ResourceSleepSongs:
		return s.SleepSongs, nil
	default:
		return nil, fmt.Errorf("%q is not a track resource", resource)
	}
}

var errNoUsers = errors.New("at least one user id is required")

// BulkUpdateUsers applies updates to every user in ids.
func (s *Service) BulkUpdateUsers(ctx context.Context, ids []string, updates map[string]any) (BulkResult, error) {
	ids = cleanIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}, errNoUsers
	}
	if len(updates) == 0 {
		return BulkResult{}, errors.New("no updates given")
	}
	body := map[string]any{"userIds": ids, "updates": updates}
	var result BulkResult
	if err := s.client.Put(ctx, api.MustPath(api.EndpointUsersBulkUpdate), body, &result); err != nil {
		return BulkResult{}, err
	}
	logging.WithContext(ctx, s.logger).Info("bulk user update", "users", len(ids), "modified", result.Modified)
	return result, nil
}

// BulkDeleteUsers deletes every user in ids with a single request.
func (s *Service) BulkDeleteUsers(ctx context.Context, ids []string) (BulkResult, error) {
	ids = cleanIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}, errNoUsers
	}
	raw, err := s.client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   api.MustPath(api.EndpointUsersBulkDelete),
		Body:   map[string]any{"userIds": ids},
	})
	if err != nil {
		return BulkResult{}, err
	}
	var result BulkResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return BulkResult{}, fmt.Errorf("decode bulk delete: %w", err)
		}
	}
	logging.WithContext(ctx, s.logger).Info("bulk user delete", "users", len(ids), "deleted", result.Deleted)
	return result, nil
}

// Dashboard fetches the aggregate dashboard statistics.
func (s *Service) Dashboard(ctx context.Context) (Stats, error) {
	return s.stats(ctx, api.EndpointDashboard, nil)
}

// UserAnalytics fetches user statistics.
func (s *Service) UserAnalytics(ctx context.Context, query map[string]string) (Stats, error) {
	return s.stats(ctx, api.EndpointAnalyticsUsers, query)
}

// CourseAnalytics fetches course statistics.
func (s *Service) CourseAnalytics(ctx context.Context, query map[string]string) (Stats, error) {
	return s.stats(ctx, api.EndpointAnalyticsCourses, query)
}

// PerformanceAnalytics fetches performance metrics.
func (s *Service) PerformanceAnalytics(ctx context.Context, query map[string]string) (Stats, error) {
	return s.stats(ctx, api.EndpointAnalyticsPerformance, query)
}

func (s *Service) stats(ctx context.Context, endpoint string, query map[string]string) (Stats, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, api.MustPath(endpoint), query, &raw); err != nil {
		return nil, err
	}
	return decodeStats(raw)
}

// Overview is the dashboard plus every analytics section that loaded.
type Overview struct {
	Dashboard   Stats
	Users       Stats
	Courses     Stats
	Performance Stats
	// Warnings lists analytics sections that failed to load.
	Warnings []string
}

// Overview loads the dashboard and analytics concurrently. Only a
// dashboard failure fails the call.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	warnings := make([]string, 3)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		stats, err := s.Dashboard(groupCtx)
		if err != nil {
			return err
		}
		out.Dashboard = stats
		return nil
	})
	sections := []struct {
		name  string
		fetch func(context.Context, map[string]string) (Stats, error)
		dest  *Stats
	}{
		{"users", s.UserAnalytics, &out.Users},
		{"courses", s.CourseAnalytics, &out.Courses},
		{"performance", s.PerformanceAnalytics, &out.Performance},
	}
	for i, section := range sections {
		group.Go(func() error {
			stats, err := section.fetch(groupCtx, nil)
			if err != nil {
				if api.IsUnauthorized(err) {
					return err
				}
				warnings[i] = fmt.Sprintf("%s analytics: %v", section.name, err)
				return nil
			}
			*section.dest = stats
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Overview{}, err
	}
	for _, warning := range warnings {
		if warning != "" {
			logging.WithContext(ctx, s.logger).Warn("analytics section unavailable", logging.FieldError, warning)
			out.Warnings = append(out.Warnings, warning)
		}
	}
	return out, nil
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
