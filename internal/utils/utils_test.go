package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWriteFileReplacesContentAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LocalSettings.php")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWriteFile(path, []byte("new"), 0640); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Fatalf("content = %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0640 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestIsValidPrefix(t *testing.T) {
	cases := map[string]bool{
		"2024-01-01": true,
		"nightly":    true,
		"":           false,
		"..":         false,
		"a/b":        false,
	}
	cases[strings.Repeat("x", 65)] = false
	for in, want := range cases {
		if got := IsValidPrefix(in); got != want {
			t.Errorf("IsValidPrefix(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateDirPath(t *testing.T) {
	dir := t.TempDir()
	got, err := ValidateDirPath(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Clean(dir) {
		t.Fatalf("got %q", got)
	}

	if _, err := ValidateDirPath(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}

	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateDirPath(file); err == nil {
		t.Fatalf("expected error for regular file")
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(512); got != "512 bytes" {
		t.Fatalf("got %q", got)
	}
	if got := FormatBytes(1536); got != "1.5 kb" {
		t.Fatalf("got %q", got)
	}
}

func TestMaskSensitive(t *testing.T) {
	if got := MaskSensitive("wikipass", 2); got != "wi****" {
		t.Fatalf("got %q", got)
	}
	if got := MaskSensitive("a", 2); got != "****" {
		t.Fatalf("got %q", got)
	}
}
