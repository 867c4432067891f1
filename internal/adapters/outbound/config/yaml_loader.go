package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/briamv/qacli/internal/domain"
)

// FileName is the project-level configuration file.
const FileName = ".qa.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .qa.yaml.
type YAMLLoader struct {
	// File overrides the location of the config file. Relative paths are
	// resolved against the project path.
	File string
}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// NewWithFile creates a YAMLLoader that reads an explicit file. A missing
// explicit file is an error.
func NewWithFile(file string) *YAMLLoader { return &YAMLLoader{File: file} }

// Load reads the config from projectPath and overlays it on DefaultConfig.
// A missing .qa.yaml yields the defaults.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	path := filepath.Join(projectPath, FileName)
	if l.File != "" {
		path = l.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectPath, path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && l.File == "" {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, invalid(path, err)
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, invalid(path, fmt.Errorf("parsing: %w", err))
	}

	// Validate before merging to catch typos in the user's raw input.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, invalid(path, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

func invalid(path string, err error) error {
	return domain.NewError(domain.ErrCodeInvalidConfig, "cannot load "+filepath.Base(path)).
		WithCause(err).
		WithSuggestions("run 'qa init --force' to regenerate a valid " + FileName)
}

// mergeConfig overlays explicit values on top of the defaults. Explicit
// (non-zero) values always win. Scopes merge per key.
func mergeConfig(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	if len(override.Scopes) > 0 {
		scopes := make(map[domain.Scope]domain.ScopeConfig, len(base.Scopes))
		for k, v := range base.Scopes {
			scopes[k] = v
		}
		for k, v := range override.Scopes {
			scopes[k] = v
		}
		result.Scopes = scopes
	}
	if len(override.Venvs) > 0 {
		result.Venvs = override.Venvs
	}
	if override.ProbeTimeout > 0 {
		result.ProbeTimeout = override.ProbeTimeout
	}
	if override.ToolTimeout > 0 {
		result.ToolTimeout = override.ToolTimeout
	}
	if override.Jobs > 0 {
		result.Jobs = override.Jobs
	}
	if override.Parallel != nil {
		result.Parallel = override.Parallel
	}
	if override.ParallelDimensions {
		result.ParallelDimensions = true
	}
	if override.GroupThreshold > 0 {
		result.GroupThreshold = override.GroupThreshold
	}
	if len(override.Tools) > 0 {
		result.Tools = override.Tools
	}

	return result
}

// Render produces the YAML written by 'qa init'.
func Render(cfg domain.ProjectConfig) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	header := "# qa configuration\n# Paths are relative to the project root.\n\n"
	return append([]byte(header), body...), nil
}
