package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"linkflow/internal/fileutil"
)

func TestWriteFileAtomicCreatesDirectoriesAndContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "qr_31337.pdf")

	if err := fileutil.WriteFileAtomic(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content: %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := fileutil.WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	if fileutil.IsRegularFile(dir) {
		t.Fatal("directory must not count as regular file")
	}
	path := filepath.Join(dir, "f")
	if fileutil.IsRegularFile(path) {
		t.Fatal("missing path must not count as regular file")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !fileutil.IsRegularFile(path) {
		t.Fatal("expected regular file")
	}
}
