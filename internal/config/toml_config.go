package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFileName is consulted when no .declscan.kdl exists
const TOMLFileName = ".declscan.toml"

// LoadTOML loads configuration from .declscan.toml, returning nil, nil when absent.
// Keys mirror the KDL layout:
//
//	include = ["Sources/**"]
//	[filter]
//	exclusion_suffixes = ["Tests"]
//	[scan]
//	workers = 4
func LoadTOML(projectRoot string) (*Config, error) {
	tomlPath := filepath.Join(projectRoot, TOMLFileName)

	content, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TOMLFileName, err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
	}

	resolveRoot(cfg, projectRoot)
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// parseTOML decodes over the defaults so unset keys keep their default values.
// Unknown keys are rejected to surface typos.
func parseTOML(content []byte) (*Config, error) {
	cfg := Default("")
	cfg.Project.Name = ""

	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
