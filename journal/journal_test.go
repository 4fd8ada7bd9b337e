package journal

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

func TestJournal_AppendAndRead(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}

	descriptor := types.ResourceDescriptor{
		ID:     "i-123456",
		Kind:   types.KindComputeInstance,
		Class:  "t3.micro",
		Region: "eu-west-1",
	}

	if err := j.Append(EntryScanStarted, "", map[string]int{"resources": 1}); err != nil {
		t.Fatalf("Failed to append scan_started: %v", err)
	}
	if err := j.Append(EntryResourceEvaluated, descriptor.ID, descriptor); err != nil {
		t.Fatalf("Failed to append resource_evaluated: %v", err)
	}
	if err := j.AppendError(EntryScanFailed, "", nil, errors.New("collector timeout")); err != nil {
		t.Fatalf("Failed to append scan_failed: %v", err)
	}

	if err := j.Close(); err != nil {
		t.Fatalf("Failed to close journal: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "guardian-*.journal"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected one journal file, got %v (%v)", files, err)
	}

	reader, err := NewReader(files[0])
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer reader.Close()

	var entries []*Entry
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read entry: %v", err)
		}
		entries = append(entries, entry)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Type != EntryScanStarted {
		t.Errorf("First entry type = %v, want %v", entries[0].Type, EntryScanStarted)
	}
	if entries[1].ResourceID != descriptor.ID {
		t.Errorf("ResourceID = %v, want %v", entries[1].ResourceID, descriptor.ID)
	}
	if entries[2].Error != "collector timeout" {
		t.Errorf("Error = %q, want %q", entries[2].Error, "collector timeout")
	}
	for i, entry := range entries {
		if entry.Sequence != int64(i+1) {
			t.Errorf("Sequence at %d = %d, want %d", i, entry.Sequence, i+1)
		}
	}
}

func TestJournal_Replay(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}
	if err := j.Append(EntryScanStarted, "", nil); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := j.Append(EntryReportEmitted, "", map[string]string{"sink": "s3"}); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Failed to close journal: %v", err)
	}

	var seen []EntryType
	err = Replay(dir, time.Time{}, func(entry *Entry) error {
		seen = append(seen, entry.Type)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	if len(seen) != 2 || seen[0] != EntryScanStarted || seen[1] != EntryReportEmitted {
		t.Errorf("Replay saw %v", seen)
	}

	// A cutoff after all writes replays nothing.
	count := 0
	err = Replay(dir, time.Now().Add(time.Hour), func(*Entry) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Replay after cutoff saw %d entries, want 0", count)
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "guardian-20240101-000000.journal")
	if err := os.WriteFile(old, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("Failed to age file: %v", err)
	}

	recent := filepath.Join(dir, "guardian-20250301-000000.journal")
	if err := os.WriteFile(recent, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	removed, err := Cleanup(dir, 7)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup removed %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Old journal file should be gone")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("Recent journal file should survive")
	}
}
