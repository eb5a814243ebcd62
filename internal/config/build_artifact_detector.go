// Build artifact detection from language-specific project files.
// Reads Package.swift, Cargo.toml, build.gradle, pom.xml and go.mod to find output
// directories that would otherwise be scanned as sources.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BuildArtifactDetector finds language-specific build output directories
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans for build configuration files and extracts output directories.
// Returns glob patterns to exclude (e.g., "**/.build/**", "**/target/**")
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string

	patterns = append(patterns, bad.detectSwiftOutputs()...)
	patterns = append(patterns, bad.detectRustOutputs()...)
	patterns = append(patterns, bad.detectGoOutputs()...)
	patterns = append(patterns, bad.detectJavaOutputs()...)

	return patterns
}

func (bad *BuildArtifactDetector) exists(name string) bool {
	_, err := os.Stat(filepath.Join(bad.projectRoot, name))
	return err == nil
}

// detectSwiftOutputs covers SwiftPM, CocoaPods, Carthage and Xcode
func (bad *BuildArtifactDetector) detectSwiftOutputs() []string {
	var patterns []string

	if bad.exists("Package.swift") {
		patterns = append(patterns, "**/.build/**", "**/.swiftpm/**")
	}
	if bad.exists("Podfile") {
		patterns = append(patterns, "**/Pods/**")
	}
	if bad.exists("Cartfile") {
		patterns = append(patterns, "**/Carthage/Build/**", "**/Carthage/Checkouts/**")
	}

	// Xcode projects keep DerivedData next to the project when configured relative
	entries, err := os.ReadDir(bad.projectRoot)
	if err != nil {
		return patterns
	}
	for _, e := range entries {
		if e.IsDir() && (strings.HasSuffix(e.Name(), ".xcodeproj") || strings.HasSuffix(e.Name(), ".xcworkspace")) {
			patterns = append(patterns, "**/DerivedData/**")
			break
		}
	}
	return patterns
}

// detectRustOutputs finds Rust build outputs (Cargo.toml)
func (bad *BuildArtifactDetector) detectRustOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "Cargo.toml"))
	if err != nil {
		return nil
	}

	patterns := []string{"**/target/**"}

	var cargo map[string]any
	if toml.Unmarshal(data, &cargo) != nil {
		return patterns
	}
	// [build] target-dir and the legacy [profile.release] target-dir
	if build, ok := cargo["build"].(map[string]any); ok {
		if targetDir, ok := build["target-dir"].(string); ok && targetDir != "" {
			patterns = append(patterns, "**/"+targetDir+"/**")
		}
	}
	if profile, ok := cargo["profile"].(map[string]any); ok {
		if release, ok := profile["release"].(map[string]any); ok {
			if targetDir, ok := release["target-dir"].(string); ok && targetDir != "" {
				patterns = append(patterns, "**/"+targetDir+"/**")
			}
		}
	}
	return patterns
}

// detectGoOutputs excludes vendored modules
func (bad *BuildArtifactDetector) detectGoOutputs() []string {
	if bad.exists("go.mod") && bad.exists("vendor") {
		return []string{"**/vendor/**"}
	}
	return nil
}

var (
	gradleBuildDir = regexp.MustCompile(`buildDir\s*=\s*["']([^"']+)["']`)
	mavenBuildDir  = regexp.MustCompile(`<directory>\s*(?:\$\{project\.basedir\}/)?([^<$\s]+)\s*</directory>`)
)

// detectJavaOutputs finds Gradle and Maven build outputs, including custom directories
func (bad *BuildArtifactDetector) detectJavaOutputs() []string {
	var patterns []string

	for _, gradle := range []string{"build.gradle", "build.gradle.kts"} {
		data, err := os.ReadFile(filepath.Join(bad.projectRoot, gradle))
		if err != nil {
			continue
		}
		patterns = append(patterns, "**/build/**", "**/.gradle/**")
		if m := gradleBuildDir.FindSubmatch(data); m != nil {
			patterns = append(patterns, "**/"+string(m[1])+"/**")
		}
	}

	if data, err := os.ReadFile(filepath.Join(bad.projectRoot, "pom.xml")); err == nil {
		patterns = append(patterns, "**/target/**")
		if m := mavenBuildDir.FindSubmatch(data); m != nil {
			patterns = append(patterns, "**/"+string(m[1])+"/**")
		}
	}

	return patterns
}

// DeduplicatePatterns removes duplicate exclusion patterns, keeping first occurrences
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}
