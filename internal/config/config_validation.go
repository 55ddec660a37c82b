// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// The database DSN and the token signing key have no sensible defaults and
// their absence is fatal at boot.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	var err error

	if cfg.Storage.DB.DSN == "" {
		err = errors.Join(err, ErrMissingDatabaseDSN)
	}
	if cfg.App.TokenSignKey == "" {
		err = errors.Join(err, ErrMissingTokenSignKey)
	}
	if cfg.Server.RateLimitRPM < 0 || cfg.Server.RateLimitBurst < 0 {
		err = errors.Join(err, ErrInvalidServerConfigs)
	}

	return err
}
