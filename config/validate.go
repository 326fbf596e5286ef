// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bitfsorg/misfit-go/rng"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.RPC.URL != "" {
		if err := validateURL(cfg.RPC.URL); err != nil {
			return fmt.Errorf("%w: rpc.url: %w", ErrInvalidURL, err)
		}
	}
	if cfg.Metrics.PushURL != "" {
		if err := validateURL(cfg.Metrics.PushURL); err != nil {
			return fmt.Errorf("%w: metrics.push_url: %w", ErrInvalidURL, err)
		}
	}

	if cfg.StartAttempts <= 0 {
		return fmt.Errorf("%w: start_attempts = %d", ErrInvalidCount, cfg.StartAttempts)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("%w: workers = %d", ErrInvalidCount, cfg.Workers)
	}

	if cfg.Seed != "" {
		if _, err := rng.ParseSeed(cfg.Seed); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
		}
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
