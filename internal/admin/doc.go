// Package admin holds the feature services behind the nestadmin commands:
// CRUD over users, courses, themes, music and sleep songs, the dashboard
// and analytics views, notifications, the operator's own profile, uploaded
// files, and the unauthenticated account flows.
//
// Every call goes through the api request client; this package only knows
// endpoint names and payload shapes.
package admin
