// Package config holds the fixer CLI's settings, resolved from flags and
// the process defaults. Only database-dsn also falls back to an
// environment variable (FIXER_DATABASE_DSN, via spf13/viper) when its flag
// is not given; no config file is read.
package config

import (
	"github.com/ajs/poefixer/internal/defaults"
)

// Currency holds the resolved settings for the `fixer currency` command
// (spec.md §6.3).
type Currency struct {
	DatabaseDSN string
	StartTime   *int64
	Continuous  bool
	MetricsAddr string

	Postprocessor defaults.Postprocessor
}

// New returns a Currency config seeded with process defaults; callers
// layer flags/env on top via cobra+viper before calling Validate.
func New() Currency {
	return Currency{
		Postprocessor: defaults.New(),
	}
}

// Validate checks the resolved configuration is usable before the Driver
// starts (spec.md §7: configuration errors are fatal at startup).
func (c Currency) Validate() error {
	if c.DatabaseDSN == "" {
		return errRequired("database-dsn")
	}
	if c.Postprocessor.BlockSize <= 0 {
		return errRequired("block-size must be positive")
	}
	return nil
}

type configError string

func (e configError) Error() string { return string(e) }

func errRequired(what string) error {
	return configError("config: " + what + " is required")
}
