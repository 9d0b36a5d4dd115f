// Package api is the request layer every nestadmin feature goes through to
// reach the Nellenest backend.
//
// Client builds URLs from the endpoint catalog, attaches default and bearer
// headers read from durable storage at call time, bounds each attempt with a
// timeout, retries connection-level failures with a linear backoff, and maps
// HTTP statuses onto the small Error taxonomy callers branch on. A 401 clears
// persisted credentials and fires the unauthorized handler unless the call
// opted out with BypassAuthRedirect.
//
// Feature code never touches net/http directly: it resolves a path with Path
// (or a typed helper), calls a verb method, and inspects KindOf(err).
package api
