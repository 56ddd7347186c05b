package config

import "fmt"

// validSecurityLevels is the closed set of accepted security levels.
var validSecurityLevels = map[string]bool{
	"strict":     true,
	"moderate":   true,
	"permissive": true,
}

// validLogLevels is the closed set of accepted log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks a configuration for invalid values.
// It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Validation.MaxTemplateLength <= 0 {
		return fmt.Errorf("validation.max_template_length must be positive, got %d", cfg.Validation.MaxTemplateLength)
	}
	if cfg.Validation.MaxVariableCount <= 0 {
		return fmt.Errorf("validation.max_variable_count must be positive, got %d", cfg.Validation.MaxVariableCount)
	}
	if !validSecurityLevels[cfg.Validation.SecurityLevel] {
		return fmt.Errorf("validation.security_level must be strict, moderate or permissive, got %q", cfg.Validation.SecurityLevel)
	}
	if cfg.Validation.ProbeTimeout <= 0 {
		return fmt.Errorf("validation.probe_timeout must be positive, got %s", cfg.Validation.ProbeTimeout)
	}
	if len(cfg.Validation.AllowedProviders) == 0 {
		return fmt.Errorf("validation.allowed_providers cannot be empty")
	}
	for i, p := range cfg.Validation.AllowedProviders {
		if p == "" {
			return fmt.Errorf("validation.allowed_providers[%d] is empty", i)
		}
	}

	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			return fmt.Errorf("audit.path cannot be empty when audit is enabled")
		}
		if cfg.Audit.AsyncBuffer <= 0 {
			return fmt.Errorf("audit.async_buffer must be positive, got %d", cfg.Audit.AsyncBuffer)
		}
		if cfg.Audit.RetentionDays < 0 {
			return fmt.Errorf("audit.retention_days cannot be negative, got %d", cfg.Audit.RetentionDays)
		}
	}

	return nil
}
