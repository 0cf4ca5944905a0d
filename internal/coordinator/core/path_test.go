package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLocalFiles(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "traces")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	a := filepath.Join(tmpDir, "a.json")
	b := filepath.Join(nested, "b.json")
	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindLocalFiles([]string{filepath.Join(tmpDir, "**", "*.json")})
	if err != nil {
		t.Fatalf("FindLocalFiles() error: %v", err)
	}

	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d: %v", len(files), files)
	}
}

func TestFindLocalFiles_NoMatches(t *testing.T) {
	files, err := FindLocalFiles([]string{filepath.Join(t.TempDir(), "*.json")})
	if err != nil {
		t.Fatalf("FindLocalFiles() error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}
}
