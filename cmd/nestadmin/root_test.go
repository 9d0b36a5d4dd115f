package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"nestadmin/internal/session"
	"nestadmin/internal/storage"
	"nestadmin/internal/testsupport"
)

func TestExecuteReleasesRuntimeWhenCommandFails(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStorageBackend("sqlite"))
	env.seedSession(t)
	env.backend.JSON(http.MethodGet, "/admin/themes", http.StatusInternalServerError, map[string]any{"message": "boom"})

	cctx := newCommandContext(&globalFlags{config: env.configPath})
	rt, err := cctx.runtime()
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	notified := 0
	rt.session.Subscribe(func(session.Session) { notified++ })

	root := newRootCommand(cctx)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(""))
	root.SetArgs([]string{"--config", env.configPath, "themes", "list"})

	if err := execute(cctx, root); err == nil {
		t.Fatal("expected themes list to fail")
	}
	if cctx.rt != nil {
		t.Fatal("expected runtime to be released after a failed command")
	}
	if _, _, err := rt.store.Get(storage.KeyAuthToken); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("expected closed store, got %v", err)
	}
	if notified == 0 {
		t.Fatal("expected the subscriber to see the session restore")
	}
	before := notified
	rt.session.Invalidate(context.Background())
	if notified != before {
		t.Fatal("subscribers should be dropped once the runtime is closed")
	}
}

func TestFilesListShowsIdentifiersAndSizes(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSession(t)
	env.backend.JSON(http.MethodGet, "/files", http.StatusOK, map[string]any{
		"files": []map[string]any{
			{"_id": "f1", "name": "calm.png", "url": "https://cdn/calm.png", "key": "nellenest/calm.png", "contentType": "image/png", "size": 2048},
		},
	})

	out, _, err := runCLI(t, env, "", "files", "list")
	if err != nil {
		t.Fatalf("files list: %v", err)
	}
	requireContains(t, out, "f1")
	requireContains(t, out, "calm.png")
	requireContains(t, out, "2.0 KiB")
	requireContains(t, out, "https://cdn/calm.png")
}
