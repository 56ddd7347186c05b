package config

import "time"

// Config is the root configuration structure for the Callisto validation
// engine. It contains the validation policy itself plus the ambient
// sections for logging, metrics, the audit trail, and the capability
// profiles file.
type Config struct {
	// Validation contains the policy knobs of the validation engine:
	// analyzer toggles, size caps, allowed providers, and security level.
	Validation ValidationConfig `yaml:"validation"`

	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Audit contains configuration for the validation audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Profiles contains configuration for the capability profiles file.
	Profiles ProfilesConfig `yaml:"profiles"`
}

// ValidationConfig controls the validation engine. It is constructed once
// and treated as immutable thereafter.
type ValidationConfig struct {
	// EnableSecurityValidation enables the security scanner.
	// Default: true
	EnableSecurityValidation bool `yaml:"enable_security_validation"`

	// EnableProviderValidation enables the provider compatibility checker.
	// Default: true
	EnableProviderValidation bool `yaml:"enable_provider_validation"`

	// MaxTemplateLength is the maximum template length in characters.
	// Templates longer than this are rejected before any scan runs.
	// Default: 50000
	MaxTemplateLength int `yaml:"max_template_length"`

	// MaxVariableCount is the maximum number of variables per validation
	// call. Default: 50
	MaxVariableCount int `yaml:"max_variable_count"`

	// AllowedProviders is the set of provider ids accepted by the
	// compatibility checker. Default: the five built-in providers.
	AllowedProviders []string `yaml:"allowed_providers"`

	// SecurityLevel controls how unsafe-pattern findings are classified:
	// "strict", "moderate", or "permissive". Default: "moderate"
	SecurityLevel string `yaml:"security_level"`

	// ProbeTimeout is the per-provider probe timeout used by provider
	// comparison. A probe that does not complete within this bound is
	// treated as failed. Default: 2s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log output.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled enables metric collection. Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace. Default: "promptforge"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem. Default: "callisto"
	Subsystem string `yaml:"subsystem"`
}

// AuditConfig contains configuration for the validation audit trail.
type AuditConfig struct {
	// Enabled enables audit recording. Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RetentionDays is the number of days to retain audit records.
	// 0 keeps records forever. Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduling retention pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// ProfilesConfig contains configuration for the capability profiles file.
type ProfilesConfig struct {
	// Path is an optional YAML file of capability profiles applied on top
	// of the built-in profiles at startup.
	Path string `yaml:"path"`

	// Watch re-applies the profiles file when it changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`
}
