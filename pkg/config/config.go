package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigEnvVar = "KEEL_CONFIG"

// Config carries the settings shared by the keelctl commands. Flags override
// anything read from the file.
type Config struct {
	// StateManifest and TargetManifest are default manifest locations, so
	// repeated invocations don't have to pass both paths every time.
	StateManifest  string `yaml:"state_manifest"`
	TargetManifest string `yaml:"target_manifest"`

	// Changed lists resource names considered stale and due for replacement.
	Changed []string `yaml:"changed"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// CommandTimeout bounds a single create/delete hook execution.
	CommandTimeout Duration `yaml:"command_timeout"`
}

// Duration wraps time.Duration so config files can use the "10s" / "1m30s"
// notation.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultPath returns the config file location: $KEEL_CONFIG if set,
// otherwise ~/.config/keel/config.yaml.
func DefaultPath() string {
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/keel/config.yaml"
	}
	return filepath.Join(home, ".config", "keel", "config.yaml")
}

// Load reads the config file at path. A missing file at the default location
// is not an error; an explicitly requested file must exist.
func Load(path string, required bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
