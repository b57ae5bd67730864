// Package pathutil converts between the absolute paths used internally and
// the relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the input path if conversion fails, the path is already
// relative, or it lies outside root.
//
// Examples:
//   - ToRelative("/home/user/project/src/Worker.java", "/home/user/project") → "src/Worker.java"
//   - ToRelative("/other/location/Worker.java", "/home/user/project") → "/other/location/Worker.java"
//   - ToRelative("src/Worker.java", "/home/user/project") → "src/Worker.java"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Different volumes on Windows
		return absPath
	}

	// Outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return relPath
}

// ToAbsolute resolves path against rootDir. Absolute paths are only cleaned.
func ToAbsolute(path, rootDir string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if rootDir == "" {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, path)
}
