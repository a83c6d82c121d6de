package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename strips any path components from an uploaded filename and
// replaces characters outside [a-zA-Z0-9._-] with underscores. An empty or
// fully-stripped name falls back to "file".
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	// Windows clients send backslash paths regardless of the server OS.
	if idx := strings.LastIndexByte(name, '\\'); idx != -1 {
		name = name[idx+1:]
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}
