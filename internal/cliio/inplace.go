// Package cliio implements vicut's in-place edit contract: an atomic
// write-temp-then-rename replace, with an optional backup copy taken
// first. New package — no teacher analog — built in the module's small
// table-free style, stdlib only (os/path/filepath cover this; no pack
// library addresses atomic file replace).
package cliio

import (
	"os"
	"path/filepath"

	"github.com/dshills/vicut/internal/vierr"
)

// BackupOptions controls whether WriteInPlace copies the original file
// aside before replacing it, per spec.md §6's --backup/--backup-extension.
type BackupOptions struct {
	Enabled   bool
	Extension string // e.g. ".bak"; applied as path+ext
}

// WriteInPlace atomically replaces path's contents with data: it writes to
// a temp file in path's directory, then renames over the original, so a
// crash mid-write never leaves a truncated file in place. If backup is
// enabled, the original is copied to path+backup.Extension first.
func WriteInPlace(path string, data []byte, backup BackupOptions) error {
	info, err := os.Stat(path)
	if err != nil {
		return vierr.Atf(vierr.IoError, path, "stat: %v", err)
	}

	if backup.Enabled {
		if err := copyFile(path, path+backup.Extension, info.Mode()); err != nil {
			return vierr.Atf(vierr.IoError, path, "backup: %v", err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".vicut-tmp-*")
	if err != nil {
		return vierr.Atf(vierr.IoError, path, "create temp: %v", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return vierr.Atf(vierr.IoError, path, "write temp: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return vierr.Atf(vierr.IoError, path, "close temp: %v", err)
	}
	if err := os.Chmod(tmpPath, info.Mode()); err != nil {
		os.Remove(tmpPath)
		return vierr.Atf(vierr.IoError, path, "chmod temp: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return vierr.Atf(vierr.IoError, path, "rename: %v", err)
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode)
}
