package testsupport

import (
	"path/filepath"
	"testing"

	"nestadmin/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a normalized config whose storage lives in a unique
// temp directory per test. Retries are disabled so failure tests stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.API.BaseURL = "http://127.0.0.1:1"
	cfgVal.API.TimeoutSeconds = 5
	cfgVal.API.MaxRetries = 0
	cfgVal.API.RetryDelayMS = 0
	cfgVal.Storage.Dir = filepath.Join(base, "state")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	return builder.cfg
}

// WithBaseURL points the config at a test backend.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = url
	}
}

// WithStorageBackend selects the session storage backend.
func WithStorageBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithRejectExpiredTokens toggles expired-token rejection on restore.
func WithRejectExpiredTokens(reject bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.RejectExpiredTokens = reject
	}
}

// WithMedia enables uploads against the given bucket and endpoint.
func WithMedia(bucket, endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Media.Bucket = bucket
		b.cfg.Media.Endpoint = endpoint
		b.cfg.Media.AccessKey = "test-access"
		b.cfg.Media.SecretKey = "test-secret"
		b.cfg.Media.PathStyle = true
	}
}
