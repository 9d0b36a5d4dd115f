package main

import (
	"strings"
	"testing"
)

func TestPayloadFlagsMergeOrder(t *testing.T) {
	p := &payloadFlags{
		fromFile: "-",
		data:     `{"name":"from data","status":"draft"}`,
		set:      []string{"status=published", "active=true", "count=3", "note=plain text"},
	}
	obj, err := p.object(strings.NewReader(`{"name":"from file","theme":"t1"}`))
	if err != nil {
		t.Fatalf("object: %v", err)
	}
	if obj["name"] != "from data" {
		t.Fatalf("--data should override file, got %v", obj["name"])
	}
	if obj["theme"] != "t1" {
		t.Fatalf("file field lost: %v", obj)
	}
	if obj["status"] != "published" {
		t.Fatalf("--set should override --data, got %v", obj["status"])
	}
	if obj["active"] != true || obj["count"] != float64(3) || obj["note"] != "plain text" {
		t.Fatalf("unexpected scalar parsing: %#v", obj)
	}
}

func TestPayloadFlagsRejectsBadInput(t *testing.T) {
	if _, err := (&payloadFlags{set: []string{"novalue"}}).object(nil); err == nil {
		t.Fatal("expected error for --set without '='")
	}
	if _, err := (&payloadFlags{data: `[1,2]`}).object(nil); err == nil {
		t.Fatal("expected error for non-object --data")
	}
	var dst struct {
		Name string `json:"name"`
	}
	if err := (&payloadFlags{data: `{"name":"x","bogus":1}`}).decode(nil, &dst); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs([]string{"a, b", "", "c,,"})
	if strings.Join(got, "|") != "a|b|c" {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestHumanLabel(t *testing.T) {
	cases := map[string]string{
		"voiceVersions": "Voice Versions",
		"created_at":    "Created At",
	}
	for in, want := range cases {
		if got := humanLabel(in); got != want {
			t.Fatalf("humanLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
