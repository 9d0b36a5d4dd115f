package api

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Endpoint names resolvable through Path.
const (
	EndpointLogin          = "auth.login"
	EndpointLogout         = "auth.logout"
	EndpointRefresh        = "auth.refresh"
	EndpointMe             = "auth.me"
	EndpointRegister       = "auth.register"
	EndpointForgotPassword = "auth.forgot_password"
	EndpointResetPassword  = "auth.reset_password"
	EndpointVerifyEmail    = "auth.verify_email"

	EndpointDashboard       = "admin.dashboard"
	EndpointUsersBulkUpdate = "admin.users.bulk_update"
	EndpointUsersBulkDelete = "admin.users.bulk_delete"

	EndpointProfile        = "user.profile"
	EndpointChangePassword = "user.change_password"
	EndpointUserThemes     = "user.themes"

	EndpointAnalyticsUsers       = "analytics.users"
	EndpointAnalyticsCourses     = "analytics.courses"
	EndpointAnalyticsPerformance = "analytics.performance"

	EndpointNotifications        = "notifications.list"
	EndpointNotificationRead     = "notifications.mark_read"
	EndpointNotificationsReadAll = "notifications.mark_all_read"
	EndpointNotificationDelete   = "notifications.delete"

	EndpointFilesUpload = "files.upload"
	EndpointFilesList   = "files.list"
	EndpointFilesDelete = "files.delete"
)

// Admin resource collections. Each has list/detail/update/delete endpoints
// named "admin.<resource>.<action>"; all but users also have create.
const (
	ResourceUsers      = "users"
	ResourceCourses    = "courses"
	ResourceThemes     = "themes"
	ResourceMusic      = "music"
	ResourceSleepSongs = "sleep_songs"
)

// Resource actions.
const (
	ActionList   = "list"
	ActionDetail = "detail"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Endpoint is one catalog entry.
type Endpoint struct {
	Name     string
	Template string
}

// Params reports how many {id} placeholders the template carries.
func (e Endpoint) Params() int {
	return strings.Count(e.Template, "{id}")
}

var catalog = buildCatalog()

func buildCatalog() map[string]string {
	entries := map[string]string{
		EndpointLogin:          "/users/login",
		EndpointLogout:         "/users/logout",
		EndpointRefresh:        "/users/refresh",
		EndpointMe:             "/users/me",
		EndpointRegister:       "/users/register",
		EndpointForgotPassword: "/users/forgot-password",
		EndpointResetPassword:  "/users/reset-password",
		EndpointVerifyEmail:    "/users/verify-email",

		EndpointDashboard:       "/admin/dashboard",
		EndpointUsersBulkUpdate: "/admin/users/bulk/update",
		EndpointUsersBulkDelete: "/admin/users/bulk/delete",

		EndpointProfile:        "/users/profile",
		EndpointChangePassword: "/users/change-password",
		EndpointUserThemes:     "/users/themes",

		EndpointAnalyticsUsers:       "/analytics/users",
		EndpointAnalyticsCourses:     "/analytics/courses",
		EndpointAnalyticsPerformance: "/analytics/performance",

		EndpointNotifications:        "/notifications",
		EndpointNotificationRead:     "/notifications/{id}/read",
		EndpointNotificationsReadAll: "/notifications/mark-all-read",
		EndpointNotificationDelete:   "/notifications/{id}",

		EndpointFilesUpload: "/files/upload",
		EndpointFilesList:   "/files",
		EndpointFilesDelete: "/files/{id}",
	}
	for _, res := range []string{ResourceUsers, ResourceCourses, ResourceThemes, ResourceMusic, ResourceSleepSongs} {
		base := "/admin/" + strings.ReplaceAll(res, "_", "-")
		entries[ResourceEndpoint(res, ActionList)] = base
		entries[ResourceEndpoint(res, ActionDetail)] = base + "/{id}"
		entries[ResourceEndpoint(res, ActionUpdate)] = base + "/{id}"
		entries[ResourceEndpoint(res, ActionDelete)] = base + "/{id}"
		if res != ResourceUsers {
			entries[ResourceEndpoint(res, ActionCreate)] = base
		}
	}
	return entries
}

// ResourceEndpoint returns the catalog name for an admin resource action.
func ResourceEndpoint(resource, action string) string {
	return "admin." + resource + "." + action
}

// Endpoints lists the catalog sorted by name.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(catalog))
	for name, tmpl := range catalog {
		out = append(out, Endpoint{Name: name, Template: tmpl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the template registered under name.
func Lookup(name string) (Endpoint, bool) {
	tmpl, ok := catalog[name]
	if !ok {
		return Endpoint{}, false
	}
	return Endpoint{Name: name, Template: tmpl}, true
}

// Path resolves a catalog entry, substituting each {id} placeholder in order
// with the path-escaped argument.
func Path(name string, args ...string) (string, error) {
	endpoint, ok := Lookup(name)
	if !ok {
		return "", fmt.Errorf("api: unknown endpoint %q", name)
	}
	if want := endpoint.Params(); want != len(args) {
		return "", fmt.Errorf("api: endpoint %q expects %d argument(s), got %d", name, want, len(args))
	}
	path := endpoint.Template
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return "", fmt.Errorf("api: endpoint %q: empty identifier", name)
		}
		path = strings.Replace(path, "{id}", url.PathEscape(arg), 1)
	}
	return path, nil
}

// MustPath is Path for names and arities fixed at compile time.
func MustPath(name string, args ...string) string {
	path, err := Path(name, args...)
	if err != nil {
		panic(err)
	}
	return path
}

// ResourcePath resolves an admin resource action.
func ResourcePath(resource, action string, args ...string) (string, error) {
	return Path(ResourceEndpoint(resource, action), args...)
}

// NotificationReadPath resolves the mark-read endpoint for a notification.
func NotificationReadPath(id string) (string, error) {
	return Path(EndpointNotificationRead, id)
}

// FilePath resolves the delete endpoint for an uploaded file.
func FilePath(id string) (string, error) {
	return Path(EndpointFilesDelete, id)
}
