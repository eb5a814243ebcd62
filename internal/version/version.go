package version

import (
	"fmt"
	"runtime/debug"
)

// Version information for declscan
const (
	// Version is the current semantic version of declscan
	Version = "0.3.0"

	// BuildDate is set during build time (use -ldflags)
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags)
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information, including the VCS revision recorded
// by the Go toolchain when no commit was injected at build time.
func FullInfo() string {
	commit := GitCommit
	if commit == "unknown" {
		if rev, ok := vcsRevision(); ok {
			commit = rev
		}
	}
	return fmt.Sprintf("declscan %s (commit: %s, built: %s)", Version, commit, BuildDate)
}

func vcsRevision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value[:min(len(s.Value), 12)], true
		}
	}
	return "", false
}
