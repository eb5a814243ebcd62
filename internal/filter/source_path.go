package filter

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultSourceExtensions are used when a SourcePathFilter has no extensions configured
var DefaultSourceExtensions = []string{".swift"}

// SourcePathFilter accepts source files that are not excluded by suffix or path fragment.
type SourcePathFilter struct {
	// Extensions accepted as source files, including the leading dot
	Extensions []string
	// ExclusionSuffixes reject files whose name without extension ends with one of them,
	// e.g. "Tests" rejects FooTests.swift
	ExclusionSuffixes []string
	// ExclusionPaths reject files whose path contains one of them
	ExclusionPaths []string
}

// NewSourcePathFilter creates a filter, defaulting to Swift sources when no extensions are given.
func NewSourcePathFilter(extensions, exclusionSuffixes, exclusionPaths []string) *SourcePathFilter {
	if len(extensions) == 0 {
		extensions = DefaultSourceExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, strings.ToLower(ext))
	}
	return &SourcePathFilter{
		Extensions:        normalized,
		ExclusionSuffixes: exclusionSuffixes,
		ExclusionPaths:    exclusionPaths,
	}
}

func (f *SourcePathFilter) Name() string { return "source-path" }

// AcceptPath implements PathFilter
func (f *SourcePathFilter) AcceptPath(path string) bool {
	ext := filepath.Ext(path)
	if !slices.Contains(f.Extensions, strings.ToLower(ext)) {
		return false
	}

	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for _, suffix := range f.ExclusionSuffixes {
		if suffix != "" && strings.HasSuffix(stem, suffix) {
			return false
		}
	}

	slashed := filepath.ToSlash(path)
	for _, fragment := range f.ExclusionPaths {
		if fragment != "" && strings.Contains(slashed, filepath.ToSlash(fragment)) {
			return false
		}
	}
	return true
}
