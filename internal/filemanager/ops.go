package filemanager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CreateFile creates an empty file at path, failing if one already
// exists there.
func CreateFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("filemanager: create %s: %w", path, err)
	}
	return f.Close()
}

// CreateDirectory creates path and any missing parents.
func CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("filemanager: mkdir %s: %w", path, err)
	}
	return nil
}

// DeletePath removes path, recursing into it if it is a directory.
func DeletePath(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("filemanager: delete %s: %w", path, err)
	}
	return nil
}

// CopyPath copies src to dst, recursing into directories and
// preserving file modes.
func CopyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("filemanager: stat %s: %w", src, err)
	}
	if info.IsDir() {
		return copyDir(src, dst, info)
	}
	return copyFile(src, dst, info)
}

func copyDir(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return fmt.Errorf("filemanager: mkdir %s: %w", dst, err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("filemanager: read %s: %w", src, err)
	}
	for _, e := range entries {
		childInfo, err := e.Info()
		if err != nil {
			return err
		}
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		if childInfo.IsDir() {
			if err := copyDir(s, d, childInfo); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(s, d, childInfo); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("filemanager: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("filemanager: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("filemanager: copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// MovePath renames src to dst, falling back to copy-then-delete when
// os.Rename fails (e.g. across filesystem boundaries, EXDEV).
func MovePath(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyPath(src, dst); err != nil {
		return err
	}
	return DeletePath(src)
}

// UniqueDestPath appends " (n)" before the extension until it finds a
// path that does not yet exist, for the batch conflict modal's "rename"
// resolution.
func UniqueDestPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// ApplyRenamePattern renames every entry in paths using template, the
// batch rename-with-pattern modal's {n}/{name}/{ext} substitution: {name}
// is the basename without extension, {ext} is the extension including
// its dot, {n} is a 1-based sequence number over paths.
func ApplyRenamePattern(paths []string, template string) error {
	for i, p := range paths {
		ext := filepath.Ext(p)
		name := strings.TrimSuffix(filepath.Base(p), ext)
		newName := strings.NewReplacer(
			"{name}", name,
			"{ext}", ext,
			"{n}", strconv.Itoa(i+1),
		).Replace(template)
		dst := filepath.Join(filepath.Dir(p), newName)
		if err := os.Rename(p, dst); err != nil {
			return fmt.Errorf("filemanager: rename %s: %w", p, err)
		}
	}
	return nil
}
