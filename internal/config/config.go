// Package config loads and validates aerie.yml, the per-project
// configuration for an aerie instance.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/aerie/internal/instance"
)

// DefaultFileName is the expected configuration file name in a project root.
const DefaultFileName = "aerie.yml"

const (
	defaultSnapshotInterval = 30 * time.Second
	defaultDispatchTimeout  = 30 * time.Second
)

// Duration wraps time.Duration so aerie.yml accepts values like "30s" or "2m".
type Duration time.Duration

// UnmarshalYAML parses a duration string such as "45s".
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

// MarshalYAML renders the duration back to its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the top-level aerie.yml configuration.
type Config struct {
	Version          string         `yaml:"version"`
	Instance         string         `yaml:"instance,omitempty"`
	Overseer         OverseerConfig `yaml:"overseer"`
	Redis            RedisConfig    `yaml:"redis,omitempty"`
	Crews            []Crew         `yaml:"crews,omitempty"`
	SnapshotInterval Duration       `yaml:"snapshot_interval,omitempty"`
	DispatchTimeout  Duration       `yaml:"dispatch_timeout,omitempty"`
}

// OverseerConfig names the human-facing arbiter for this instance.
type OverseerConfig struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id,omitempty"` // Optional: generated when empty
}

// RedisConfig points the instance at its Redis server.
type RedisConfig struct {
	URL string `yaml:"url,omitempty"`
}

// Crew declares a worker crew the daemon registers at startup so
// directives can be routed to it by name.
type Crew struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id,omitempty"` // Optional: defaults to the name
}

// Validate performs strict validation on the configuration and applies
// defaults for omitted fields.
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: overseer name
	if c.Overseer.Name == "" {
		return fmt.Errorf("overseer.name is required")
	}

	if c.Instance != "" {
		if err := instance.ValidateName(c.Instance); err != nil {
			return fmt.Errorf("instance: %w", err)
		}
	}

	// Crews need names, and names must be unique after lowercasing
	// because directive routing resolves them case-insensitively.
	namesSeen := make(map[string]string) // lowered name → declared name
	for i := range c.Crews {
		crew := &c.Crews[i]
		if crew.Name == "" {
			return fmt.Errorf("crews[%d]: name is required", i)
		}
		lowered := strings.ToLower(crew.Name)
		if existing, exists := namesSeen[lowered]; exists {
			return fmt.Errorf("duplicate crew name '%s' (conflicts with '%s'): crew names must be unique ignoring case", crew.Name, existing)
		}
		namesSeen[lowered] = crew.Name

		if crew.ID == "" {
			crew.ID = lowered
		}
	}

	if c.SnapshotInterval == 0 {
		c.SnapshotInterval = Duration(defaultSnapshotInterval)
	}
	if c.SnapshotInterval.Std() < time.Second {
		return fmt.Errorf("snapshot_interval must be at least 1s, got %s", c.SnapshotInterval.Std())
	}

	if c.DispatchTimeout == 0 {
		c.DispatchTimeout = Duration(defaultDispatchTimeout)
	}
	if c.DispatchTimeout.Std() <= 0 {
		return fmt.Errorf("dispatch_timeout must be positive, got %s", c.DispatchTimeout.Std())
	}

	return nil
}

// InstanceName resolves the effective instance name, honoring the
// AERIE_INSTANCE_NAME environment override.
func (c *Config) InstanceName() string {
	return instance.Name(c.Instance)
}

// RedisURL resolves the effective Redis URL, honoring the
// AERIE_REDIS_URL environment override.
func (c *Config) RedisURL() string {
	return instance.RedisURL(c.Redis.URL)
}

// Load reads and validates aerie.yml from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
