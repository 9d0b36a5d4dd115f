// Package main hosts the nestadmin CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls against the
// Nellenest admin API. This package owns wiring: configuration resolution,
// the durable credential store, the request client and session manager, and
// rendering of tables or JSON. Authenticated commands restore the stored
// session first and stop with a login notice when there is none.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// only surfaced here.
package main
