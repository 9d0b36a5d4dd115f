package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "state.json")),
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestStoreMissingKeyIsAbsent(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			value, ok, err := store.Get(KeyAuthToken)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok || value != "" {
				t.Fatalf("expected absent key, got %q (ok=%v)", value, ok)
			}
		})
	}
}

func TestStoreSetGetRemove(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(KeyAuthToken, "abc.def.ghi"); err != nil {
				t.Fatalf("set token: %v", err)
			}
			if err := store.Set(KeyUserData, `{"name":"Ada"}`); err != nil {
				t.Fatalf("set user: %v", err)
			}
			if err := store.Set(KeyAuthToken, "new.token.value"); err != nil {
				t.Fatalf("overwrite token: %v", err)
			}

			got, ok, err := store.Get(KeyAuthToken)
			if err != nil || !ok {
				t.Fatalf("get token: %q ok=%v err=%v", got, ok, err)
			}
			if got != "new.token.value" {
				t.Fatalf("token mismatch: got %q", got)
			}

			if err := store.Remove(KeyAuthToken, KeyUserData, "unknown"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			for _, key := range []string{KeyAuthToken, KeyUserData} {
				if _, ok, err := store.Get(key); err != nil || ok {
					t.Fatalf("expected %s removed, ok=%v err=%v", key, ok, err)
				}
			}
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	first := NewFileStore(path)
	if err := first.Set(KeyUserData, `{"email":"ops@example.com"}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat state file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}

	second := NewFileStore(path)
	got, ok, err := second.Get(KeyUserData)
	if err != nil || !ok {
		t.Fatalf("get from second instance: ok=%v err=%v", ok, err)
	}
	if got != `{"email":"ops@example.com"}` {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	store := NewFileStore(path)
	if _, _, err := store.Get(KeyAuthToken); err == nil {
		t.Fatal("expected decode error for corrupt state file")
	}
}

func TestClosedStoresReject(t *testing.T) {
	stores := []Store{NewMemoryStore(), NewFileStore(filepath.Join(t.TempDir(), "state.json"))}
	for _, store := range stores {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := store.Set(KeyAuthToken, "x"); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	store, err := Open("", dir)
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	fileStore, ok := store.(*FileStore)
	if !ok {
		t.Fatalf("expected *FileStore, got %T", store)
	}
	if fileStore.Path() != filepath.Join(dir, "state.json") {
		t.Fatalf("unexpected file path %q", fileStore.Path())
	}

	store, err = Open("SQLite", dir)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected *SQLiteStore, got %T", store)
	}

	if _, err := Open("redis", dir); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
