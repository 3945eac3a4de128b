package ioutils

import (
	"context"
	"os"
	"regexp"
	"strings"
)

var (
	// Characters Windows refuses in file names, plus control characters.
	invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDotsRe = regexp.MustCompile(`\.+$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// WriteFile writes data to path with mode 0644, truncating any existing
// file. A canceled context aborts before anything touches the disk.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, "/shows/shows.m3u", playlistContent)
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in
// file and folder names.
//
// Callsigns entered by hand end up embedded in every segment filename
// and temp path, so they pass through here before any path is built.
// The rules target Windows, which has the most restrictive naming:
//
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("KFJC/2")      // Returns "KFJC_2"
//	SanitizeFileName("BSR...")      // Returns "BSR"
//	SanitizeFileName("A   B")       // Returns "A B"
func SanitizeFileName(name string) string {
	name = invalidCharsRe.ReplaceAllString(name, "_")
	name = trailingDotsRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all missing parents with mode 0755.
// An existing directory is not an error.
//
// Example:
//
//	err := EnsureDir("/shows/tmp/2024-01-08")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
