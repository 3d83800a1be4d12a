package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write data file: %v", err)
	}
	return path
}

func TestNewLookupLoadsFile(t *testing.T) {
	path := writeDataFile(t, "Kigali,-1.9441,30.0619\nMusanze,-1.4996,29.6342\n")

	l, err := NewLookup(path)
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}
	if l.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", l.Size())
	}

	c, ok := l.Find("Kigali")
	if !ok {
		t.Fatal("Kigali not found")
	}
	if c.Latitude != -1.9441 || c.Longitude != 30.0619 {
		t.Errorf("unexpected coordinates: %+v", c)
	}
}

func TestFindNormalizesCaseAndSpace(t *testing.T) {
	path := writeDataFile(t, "Kigali,-1.9441,30.0619\n")
	l, err := NewLookup(path)
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}

	for _, name := range []string{"kigali", "KIGALI", "  Kigali  "} {
		if _, ok := l.Find(name); !ok {
			t.Errorf("Find(%q) should match", name)
		}
	}
	if _, ok := l.Find("Gisenyi"); ok {
		t.Error("unknown city should not match")
	}
}

func TestEmptyPathYieldsEmptyLookup(t *testing.T) {
	l, err := NewLookup("")
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}
	if l.Size() != 0 {
		t.Errorf("Size() = %d, want 0", l.Size())
	}
	if _, ok := l.Find("Kigali"); ok {
		t.Error("empty lookup should find nothing")
	}
}

func TestNewLookupRejectsBadRows(t *testing.T) {
	path := writeDataFile(t, "Kigali,not-a-number,30.0619\n")
	if _, err := NewLookup(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReloadSwapsTable(t *testing.T) {
	path := writeDataFile(t, "Kigali,-1.9441,30.0619\n")
	l, err := NewLookup(path)
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}

	if err := os.WriteFile(path, []byte("Huye,-2.5921,29.7394\n"), 0o644); err != nil {
		t.Fatalf("rewrite data file: %v", err)
	}
	if err := l.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if _, ok := l.Find("Kigali"); ok {
		t.Error("stale city survived reload")
	}
	if _, ok := l.Find("Huye"); !ok {
		t.Error("new city missing after reload")
	}
}
