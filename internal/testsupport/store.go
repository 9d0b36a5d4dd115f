package testsupport

import (
	"testing"

	"nestadmin/internal/config"
	"nestadmin/internal/storage"
)

// MustOpenStore opens the configured session store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) storage.Store {
	t.Helper()

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedSession writes a token and optional raw profile JSON into store.
func SeedSession(t testing.TB, store storage.Store, token, profileJSON string) {
	t.Helper()

	if token != "" {
		if err := store.Set(storage.KeyAuthToken, token); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}
	if profileJSON != "" {
		if err := store.Set(storage.KeyUserData, profileJSON); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
}
