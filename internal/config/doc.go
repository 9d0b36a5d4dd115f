// Package config loads, normalizes, and validates nestadmin configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NESTADMIN_API_URL. The Config type centralizes every knob the CLI needs:
// the backend origin and retry policy, where session state is stored,
// object storage for uploads, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
