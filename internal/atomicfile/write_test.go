// Tests for [Write]: basic round-trip, overwrite, concurrent writers on
// distinct files, permissions, and temp-file cleanup on failure.

package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cached.ttf")

	if err := Write(path, []byte("font bytes"), 0o644); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "font bytes" {
		t.Errorf("content = %q, want %q", got, "font bytes")
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overwrite.txt")

	if err := Write(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := Write(path, []byte("updated"), 0o644); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "updated" {
		t.Errorf("content = %q, want %q", got, "updated")
	}
}

func TestWriteConcurrentDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	const n = 16

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := filepath.Join(dir, fmt.Sprintf("f%02d.txt", i))
			if err := Write(path, []byte(fmt.Sprintf("writer %d", i)), 0o644); err != nil {
				t.Errorf("Write %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		got, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("f%02d.txt", i)))
		if err != nil {
			t.Errorf("ReadFile %d: %v", i, err)
			continue
		}
		if want := fmt.Sprintf("writer %d", i); string(got) != want {
			t.Errorf("file %d = %q, want %q", i, got, want)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if matched, _ := filepath.Match("*.tmp.*", e.Name()); matched {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWritePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perms.txt")

	if err := Write(path, []byte("secret"), 0o600); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// Windows maps 0o600 loosely; require at least owner read-write.
	if got := info.Mode().Perm(); got&0o600 == 0 {
		t.Errorf("permissions = %o, want at least owner rw", got)
	}
}

func TestWriteCleanupOnFailure(t *testing.T) {
	// Writing into a directory that does not exist must fail without
	// leaving temp files in any directory that does.
	badPath := filepath.Join(t.TempDir(), "no-such-dir", "file.txt")

	if err := Write(badPath, []byte("data"), 0o644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}

	parent := filepath.Dir(filepath.Dir(badPath))
	entries, _ := os.ReadDir(parent)
	for _, e := range entries {
		if matched, _ := filepath.Match("file.txt.tmp.*", e.Name()); matched {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
