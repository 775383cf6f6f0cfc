package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectConfig is the top-level shape of a project's flux.yaml, letting a
// directory of .flux files declare its own package name and which
// sibling directories to treat as importable packages (spec.md §6
// external interfaces; grounded on the teacher's funxy.yaml loader).
type ProjectConfig struct {
	// Package is this directory's import path when it is itself imported
	// by another package in the tree.
	Package string `yaml:"package"`

	// Packages maps an import path to the directory (relative to
	// flux.yaml) holding its source files, for layouts where import paths
	// don't mirror the filesystem one-to-one.
	Packages map[string]string `yaml:"packages,omitempty"`
}

// LoadProjectConfig reads and parses a flux.yaml file. A missing file is
// not an error: callers fall back to inferring the package name from the
// directory name and importing by relative path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
