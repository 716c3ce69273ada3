// Package ioutils provides file system utilities for modtool.
//
// This package contains functions for:
//   - Directory creation
//   - Best-effort directory clearing
//   - Deriving file names from download URLs
//   - Filename sanitization
package ioutils

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrBadFileName is returned when a URL yields no usable file name.
var ErrBadFileName = errors.New("no usable file name")

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ClearDir removes every regular file directly inside dir.
//
// Removal is best-effort: a file that cannot be removed (for example one
// locked by a running game) is skipped and counted, it does not abort the
// rest of the clear. Subdirectories are left alone. A missing directory is
// created empty. An error is only returned when dir itself cannot be read.
//
// Example:
//
//	removed, skipped, err := ClearDir("/home/steve/.minecraft/mods")
func ClearDir(dir string) (removed, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, EnsureDir(dir)
		}
		return 0, 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			skipped++
			continue
		}
		removed++
	}
	return removed, skipped, nil
}

// FileNameFromURL returns the unescaped final path segment of rawURL.
//
// Query strings and fragments are ignored. Names that would escape the
// target directory or are otherwise unusable return ErrBadFileName.
//
// Example:
//
//	FileNameFromURL("https://cdn.modrinth.com/data/AANobbMI/versions/sodium-0.5.3.jar?x=1")
//	// Returns "sodium-0.5.3.jar"
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadFileName, err)
	}

	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", fmt.Errorf("%w: %q", ErrBadFileName, rawURL)
	}

	name := path.Base(u.Path)
	switch name {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrBadFileName, rawURL)
	}

	sanitized := SanitizeFileName(name)
	if sanitized == "" {
		return "", fmt.Errorf("%w: %q", ErrBadFileName, rawURL)
	}
	return sanitized, nil
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("create:1.2?.jar")  // Returns "create_1.2_.jar"
//	SanitizeFileName("sodium...")        // Returns "sodium"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
