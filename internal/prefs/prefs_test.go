package prefs

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)
	if _, ok, err := s.Get(context.Background(), KeyMessageRefreshInterval); err != nil || ok {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyMessageRefreshInterval, "30000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, KeyMessageRefreshInterval)
	if err != nil || !ok || v != "30000" {
		t.Fatalf("expected 30000, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyMessageHighlightContent, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, KeyMessageHighlightContent, "false"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, KeyMessageHighlightContent)
	if err != nil || !ok || v != "false" {
		t.Fatalf("expected false after overwrite, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestReopenKeepsValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, KeyMessageRefreshInterval, "60000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, ok, err := s2.Get(ctx, KeyMessageRefreshInterval)
	if err != nil || !ok || v != "60000" {
		t.Fatalf("expected persisted value after reopen, got %q ok=%v err=%v", v, ok, err)
	}
}
