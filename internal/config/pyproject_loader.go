package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PyprojectToml represents the structure of pyproject.toml
type PyprojectToml struct {
	Tool ToolConfig `toml:"tool"`
}

// ToolConfig represents the [tool] section
type ToolConfig struct {
	Pyrefactor *PyrefactorSection `toml:"pyrefactor"`
}

// PyrefactorSection represents [tool.pyrefactor]. Detection keys sit
// directly in the section; the other groups are sub-tables such as
// [tool.pyrefactor.oracle].
type PyrefactorSection struct {
	TomlDetectionConfig

	Oracle TomlOracleConfig `toml:"oracle"`
	Cache  TomlCacheConfig  `toml:"cache"`
	Input  TomlInputConfig  `toml:"input"`
	Output TomlOutputConfig `toml:"output"`
}

// LoadPyprojectConfig reads [tool.pyrefactor] from the pyproject.toml at
// path. found is false when the file has no such section.
func LoadPyprojectConfig(path string) (cfg *Config, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	var pyproject PyprojectToml
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}

	section := pyproject.Tool.Pyrefactor
	if section == nil {
		return nil, false, nil
	}

	cfg = DefaultConfig()
	err = mergeTomlConfig(cfg, &TomlFileConfig{
		Detection: section.TomlDetectionConfig,
		Oracle:    section.Oracle,
		Cache:     section.Cache,
		Input:     section.Input,
		Output:    section.Output,
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}

// findPyprojectToml walks up the directory tree to find pyproject.toml
func findPyprojectToml(startDir string) (string, error) {
	return walkUp(startDir, "pyproject.toml")
}
