package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixtures use unix absolute paths")
	}

	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/work/app/Sources/App.swift",
			rootDir:  "/work/app",
			expected: "Sources/App.swift",
		},
		{
			name:     "root level file",
			absPath:  "/work/app/Package.swift",
			rootDir:  "/work/app/",
			expected: "Package.swift",
		},
		{
			name:     "same directory",
			absPath:  "/work/app",
			rootDir:  "/work/app",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "Sources/App.swift",
			rootDir:  "/work/app",
			expected: "Sources/App.swift",
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/Shared.swift",
			rootDir:  "/work/app",
			expected: "/other/Shared.swift",
		},
		{
			name:     "sibling sharing a prefix",
			absPath:  "/work/app2/Main.swift",
			rootDir:  "/work/app",
			expected: "/work/app2/Main.swift",
		},
		{
			name:     "dot-prefixed name inside root",
			absPath:  "/work/app/..hidden/Main.swift",
			rootDir:  "/work/app",
			expected: "..hidden/Main.swift",
		},
		{
			name:     "empty root directory",
			absPath:  "/work/app/Main.swift",
			rootDir:  "",
			expected: "/work/app/Main.swift",
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/work/app",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToRelative(tt.absPath, tt.rootDir); got != tt.expected {
				t.Errorf("ToRelative() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "Sources", "App.swift")

	if got := Display(file, root); got != "Sources/App.swift" {
		t.Errorf("Display() = %v, want Sources/App.swift", got)
	}
	if got := Display(file, file); got != "App.swift" {
		t.Errorf("Display() of the root file = %v, want App.swift", got)
	}
}
