package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultEnvFile = ".env"

// readEnvFile reads the KEY=VALUE environment definition file. The default
// .env may be absent; an explicitly requested file may not.
func readEnvFile(overrides *Overrides) (map[string]string, error) {
	path := defaultEnvFile
	explicit := false
	if overrides != nil && overrides.EnvFile != "" {
		path = overrides.EnvFile
		explicit = true
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

// readSettingsFile loads the optional YAML settings file. Keys use the same
// names as the environment variables; scalar values are rendered back to
// strings so they pass through the same coercion as real environment values.
func readSettingsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values, nil
}
