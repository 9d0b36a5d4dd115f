package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nestadmin/internal/config"
	"nestadmin/internal/storage"
	"nestadmin/internal/testsupport"
)

const testToken = "header.payload.signature"

type cliTestEnv struct {
	backend    *testsupport.FakeBackend
	cfg        *config.Config
	store      storage.Store
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{config.EnvAPIURL, config.EnvStorageDir, config.EnvS3AccessKey, config.EnvS3SecretKey, config.EnvS3Bucket, config.EnvLogLevel} {
		t.Setenv(key, "")
	}

	backend := testsupport.NewFakeBackend(t)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBaseURL(backend.URL())}, opts...)...)

	configPath := filepath.Join(homeDir, ".config", "nestadmin", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg, "")

	return &cliTestEnv{
		backend:    backend,
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		configPath: configPath,
	}
}

func (e *cliTestEnv) seedSession(t *testing.T) {
	t.Helper()
	testsupport.SeedSession(t, e.store, testToken, `{"name":"Ada Admin","email":"ada@example.com","role":"admin"}`)
	e.backend.JSON("GET", "/users/me", 200, map[string]any{
		"user": map[string]any{"name": "Ada Admin", "email": "ada@example.com", "role": "admin"},
	})
}

func (e *cliTestEnv) storedToken(t *testing.T) (string, bool) {
	t.Helper()
	value, ok, err := e.store.Get(storage.KeyAuthToken)
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	return value, ok
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cctx := newCommandContext(&globalFlags{})
	cmd := newRootCommand(cctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := execute(cctx, cmd)
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, extra string) {
	t.Helper()
	content := fmt.Sprintf(
		"[api]\nbase_url = %q\nmax_retries = 0\nretry_delay_ms = 0\ntimeout_seconds = 5\n\n[storage]\nbackend = %q\ndir = %q\n\n[auth]\nreject_expired_tokens = %t\n\n[logging]\nlevel = \"error\"\n%s%s",
		cfg.API.BaseURL,
		cfg.Storage.Backend,
		cfg.Storage.Dir,
		cfg.Auth.RejectExpiredTokens,
		mediaSection(cfg),
		extra,
	)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func mediaSection(cfg *config.Config) string {
	if !cfg.Media.Enabled() {
		return ""
	}
	return fmt.Sprintf(
		"\n[media]\nbucket = %q\nendpoint = %q\naccess_key = %q\nsecret_key = %q\npath_style = %t\n",
		cfg.Media.Bucket,
		cfg.Media.Endpoint,
		cfg.Media.AccessKey,
		cfg.Media.SecretKey,
		cfg.Media.PathStyle,
	)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
