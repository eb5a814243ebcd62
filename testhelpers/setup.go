// Package testhelpers provides shared utilities for testing declscan
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteTree creates files below root from slash-separated relative names and returns
// the absolute path of each file by name.
// Usage:
//
//	paths := testhelpers.WriteTree(t, t.TempDir(), map[string]string{
//	    "Sources/App.swift": "class App {}",
//	})
func WriteTree(t *testing.T, root string, files map[string]string) map[string]string {
	t.Helper()

	paths := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		paths[name] = path
	}
	return paths
}

// IsolateHome points HOME at an empty directory so a developer's ~/.declscan.kdl
// cannot leak into config loading
func IsolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// WaitFor waits for a condition to become true with timeout
// Usage:
//
//	testhelpers.WaitFor(t, func() bool {
//	    return len(capture.Entries()) > 0
//	}, 5*time.Second)
func WaitFor(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %v", timeout)
			return
		}
	}
}
