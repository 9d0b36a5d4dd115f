// Package storage persists the small amount of client-side state nestadmin
// keeps between invocations: the bearer token and the cached profile record.
//
// Every backend implements the same string-keyed Store contract so the
// session and request layers never care where the values live. A missing key
// always resolves to "absent" instead of an error, which keeps first-run and
// post-logout paths identical.
//
// FileStore is the default and guards read-modify-write cycles with a flock so
// two concurrent CLI invocations cannot interleave writes. SQLiteStore offers
// the same contract on top of a single-table database for operators who keep
// state on shared volumes.
package storage
