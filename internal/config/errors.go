package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration values are missing or invalid.
var (
	// ErrMissingDatabaseDSN indicates that no database connection string was
	// supplied by any configuration source.
	ErrMissingDatabaseDSN = errors.New("database DSN is not configured")
	// ErrMissingTokenSignKey indicates that no JWT signing secret was
	// supplied by any configuration source.
	ErrMissingTokenSignKey = errors.New("token sign key is not configured")
	// ErrInvalidServerConfigs indicates invalid server-level settings
	// (for example, negative rate-limit values).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
