package dedup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed_ids.txt")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestFileStore_RecordAndContains(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	if s.Contains("quake-1") {
		t.Error("Expected empty store not to contain quake-1")
	}

	if err := s.Record(ctx, "quake-1"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !s.Contains("quake-1") {
		t.Error("Expected store to contain quake-1 after record")
	}
	if s.Len() != 1 {
		t.Errorf("Expected len 1, got %d", s.Len())
	}

	// Recording again is a no-op
	if err := s.Record(ctx, "quake-1"); err != nil {
		t.Fatalf("Duplicate record failed: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected len 1 after duplicate record, got %d", s.Len())
	}
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_ids.txt")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s.Record(ctx, "quake-X"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := s.Record(ctx, "quake-Y"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	s.Close()

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	if !reopened.Contains("quake-X") || !reopened.Contains("quake-Y") {
		t.Error("Expected identifiers to survive restart")
	}
	if reopened.Len() != 2 {
		t.Errorf("Expected 2 identifiers after restart, got %d", reopened.Len())
	}
}

func TestFileStore_DiscardsTornTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_ids.txt")

	// Simulate a crash mid-write: two complete records plus a torn one.
	if err := os.WriteFile(path, []byte("quake-1\nquake-2\nquake-3-partia"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	if !s.Contains("quake-1") || !s.Contains("quake-2") {
		t.Error("Expected complete records to load")
	}
	if s.Contains("quake-3-partia") {
		t.Error("Expected torn trailing record to be discarded")
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 identifiers, got %d", s.Len())
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s, _ := newTestFileStore(t)
	if s.Len() != 0 {
		t.Errorf("Expected empty store for fresh file, got %d", s.Len())
	}
}

func TestFileStore_AppendOnly(t *testing.T) {
	s, path := newTestFileStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Record(ctx, id); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "a\nb\nc\n" {
		t.Errorf("Expected append-only insertion order, got %q", string(data))
	}
}

func TestFileStore_RejectsLineBreakIdentifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_ids.txt")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := s.Record(ctx, "quake\nsplit"); err == nil {
		t.Fatal("Expected error recording identifier with a line break")
	}
	if s.Contains("quake\nsplit") {
		t.Error("Rejected identifier must not be marked seen")
	}
	s.Close()

	// The log must not have gained lines the loader would read back as
	// other identifiers.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	if reopened.Len() != 0 {
		t.Errorf("Expected empty store after rejected record, got %d identifiers", reopened.Len())
	}
	if reopened.Contains("quake") || reopened.Contains("split") {
		t.Error("Rejected identifier leaked fragments into the log")
	}
}
