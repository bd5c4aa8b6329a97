// Package instance provides naming rules and addressing helpers for
// aerie instances. An instance is one overseer plus its Redis-backed
// message fabric; the instance name prefixes every Redis key and
// channel the instance touches, so names follow DNS label rules.
package instance

import (
	"fmt"
	"os"
	"regexp"
)

const (
	// DefaultName is used when no instance name is configured.
	DefaultName = "default"

	// MaxNameLength is the maximum length for an instance name (DNS-compatible)
	MaxNameLength = 63
)

// namePattern matches valid instance names: lowercase alphanumeric,
// hyphens allowed but not at start/end, single characters permitted.
var namePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateName checks if an instance name is valid according to DNS naming rules.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// Name resolves the effective instance name for the current process.
// Precedence: the AERIE_INSTANCE_NAME environment variable, then the
// configured value, then DefaultName.
func Name(configured string) string {
	if env := os.Getenv("AERIE_INSTANCE_NAME"); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return DefaultName
}
