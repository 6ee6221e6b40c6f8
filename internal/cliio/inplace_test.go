package cliio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteInPlaceReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if err := WriteInPlace(path, []byte("new"), BackupOptions{}); err != nil {
		t.Fatalf("WriteInPlace: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

func TestWriteInPlaceCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	err := WriteInPlace(path, []byte("changed"), BackupOptions{Enabled: true, Extension: ".bak"})
	if err != nil {
		t.Fatalf("WriteInPlace: %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("ReadFile backup: %v", err)
	}
	if string(backup) != "original" {
		t.Errorf("backup = %q, want %q", backup, "original")
	}
}

func TestWriteInPlaceMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	err := WriteInPlace(filepath.Join(dir, "missing.txt"), []byte("x"), BackupOptions{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteInPlacePreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := WriteInPlace(path, []byte("new"), BackupOptions{}); err != nil {
		t.Fatalf("WriteInPlace: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}
