// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tipline Contributors

package config

import "time"

const (
	defaultHTTPAddress          = "localhost:8080"
	defaultDriver               = "pgx"
	defaultUploadDir            = "/var/tmp/tipline"
	defaultRequestTimeout       = 30 * time.Second
	defaultUniformDelay         = time.Second
	defaultSlowRequestThreshold = 120 * time.Second
	defaultSessionLifetime      = time.Hour
	defaultTokenLifetime        = 90 * time.Minute
	defaultSweepInterval        = time.Minute
	defaultCleanupInterval      = 10 * time.Minute
)

// applyDefaults fills every unset field with its default so that callers
// never have to guard against zero durations.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Server.UniformDelay == 0 {
		cfg.Server.UniformDelay = defaultUniformDelay
	}
	if cfg.Server.SlowRequestThreshold == 0 {
		cfg.Server.SlowRequestThreshold = defaultSlowRequestThreshold
	}
	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = defaultDriver
	}
	if cfg.Storage.Files.UploadDir == "" {
		cfg.Storage.Files.UploadDir = defaultUploadDir
	}
	if cfg.Sessions.Lifetime == 0 {
		cfg.Sessions.Lifetime = defaultSessionLifetime
	}
	if cfg.Sessions.TokenLifetime == 0 {
		cfg.Sessions.TokenLifetime = defaultTokenLifetime
	}
	if cfg.Sessions.SweepInterval == 0 {
		cfg.Sessions.SweepInterval = defaultSweepInterval
	}
	if cfg.Workers.CleanupInterval == 0 {
		cfg.Workers.CleanupInterval = defaultCleanupInterval
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.DB.Driver != "pgx" && cfg.Storage.DB.Driver != "sqlite3" {
		return ErrInvalidStorageConfigs
	}

	return nil
}
