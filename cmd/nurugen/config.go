package main

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// configFile is the optional project configuration. Flags override its
// values; the file only sets defaults for a repository.
const configFile = "nurugen.yaml"

// projectConfig mirrors the generate flags in nurugen.yaml.
type projectConfig struct {
	Patterns    []string `yaml:"patterns"`
	Dir         string   `yaml:"dir"`
	Header      string   `yaml:"header"`
	Workers     int      `yaml:"workers"`
	SnapshotDir string   `yaml:"snapshot_dir"`
	Features    []string `yaml:"features"`
	BuildFlags  []string `yaml:"build_flags"`
}

// loadProjectConfig reads nurugen.yaml from dir when present. A missing file
// is not an error; a malformed one is.
func loadProjectConfig(dir string) (*projectConfig, error) {
	path := configFile
	if dir != "" {
		path = dir + string(os.PathSeparator) + configFile
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &projectConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	var pc projectConfig
	if err := yaml.Unmarshal(raw, &pc); err != nil {
		return nil, err
	}
	return &pc, nil
}
