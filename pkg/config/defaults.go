package config

import "time"

// Default values for configuration fields.
const (
	// Validation defaults
	DefaultEnableSecurityValidation = true
	DefaultEnableProviderValidation = true
	DefaultMaxTemplateLength        = 50000
	DefaultMaxVariableCount         = 50
	DefaultSecurityLevel            = "moderate"
	DefaultProbeTimeout             = 2 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "promptforge"
	DefaultMetricsSubsystem = "callisto"

	// Audit defaults
	DefaultAuditEnabled       = false
	DefaultAuditPath          = "data/audit.db"
	DefaultAuditAsyncBuffer   = 1000
	DefaultAuditWriteTimeout  = 5 * time.Second
	DefaultAuditRetentionDays = 90
	DefaultAuditPruneSchedule = "0 3 * * *"
)

// DefaultAllowedProviders returns the provider ids accepted by default.
func DefaultAllowedProviders() []string {
	return []string{"openai", "anthropic", "meta", "aws-bedrock", "azure-openai"}
}

// Default returns a fully populated configuration. Loading a file
// unmarshals on top of this value, so explicit false/zero values in the
// file override the defaults while absent fields keep them.
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			EnableSecurityValidation: DefaultEnableSecurityValidation,
			EnableProviderValidation: DefaultEnableProviderValidation,
			MaxTemplateLength:        DefaultMaxTemplateLength,
			MaxVariableCount:         DefaultMaxVariableCount,
			AllowedProviders:         DefaultAllowedProviders(),
			SecurityLevel:            DefaultSecurityLevel,
			ProbeTimeout:             DefaultProbeTimeout,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   DefaultMetricsEnabled,
			Namespace: DefaultMetricsNamespace,
			Subsystem: DefaultMetricsSubsystem,
		},
		Audit: AuditConfig{
			Enabled:       DefaultAuditEnabled,
			Path:          DefaultAuditPath,
			AsyncBuffer:   DefaultAuditAsyncBuffer,
			WriteTimeout:  DefaultAuditWriteTimeout,
			RetentionDays: DefaultAuditRetentionDays,
			PruneSchedule: DefaultAuditPruneSchedule,
		},
	}
}

// ApplyDefaults fills zero-valued fields that must never stay zero, for
// configs constructed by hand rather than through Default or LoadConfig.
func ApplyDefaults(cfg *Config) {
	if cfg.Validation.MaxTemplateLength == 0 {
		cfg.Validation.MaxTemplateLength = DefaultMaxTemplateLength
	}
	if cfg.Validation.MaxVariableCount == 0 {
		cfg.Validation.MaxVariableCount = DefaultMaxVariableCount
	}
	if len(cfg.Validation.AllowedProviders) == 0 {
		cfg.Validation.AllowedProviders = DefaultAllowedProviders()
	}
	if cfg.Validation.SecurityLevel == "" {
		cfg.Validation.SecurityLevel = DefaultSecurityLevel
	}
	if cfg.Validation.ProbeTimeout == 0 {
		cfg.Validation.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultAuditPruneSchedule
	}
}
