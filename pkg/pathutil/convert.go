// Package pathutil converts between the absolute paths used inside a scan and the
// root-relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/work/app/Sources/App.swift", "/work/app") → "Sources/App.swift"
//   - ToRelative("/other/Shared.swift", "/work/app") → "/other/Shared.swift" (outside root)
//   - ToRelative("Sources/App.swift", "/work/app") → "Sources/App.swift" (already relative)
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
		// e.g. different drives on Windows
		return absPath
	}

	// outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// Display returns the root-relative, slash-separated form of path for reports.
// A root that is itself a file displays as its base name.
func Display(path, rootDir string) string {
	if rel := ToRelative(path, rootDir); rel != "." {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}
