package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AVATAR_"

// ParseEnv overlays AVATAR_* environment variables onto target. Unset
// variables leave the current values alone.
func ParseEnv(target any) error {
	return parseEnv(target, nil)
}

// parseEnv reads from environ instead of the process environment when it is
// non-nil.
func parseEnv(target any, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
