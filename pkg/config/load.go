package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "CALLISTO_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshalled on top of the default configuration, so absent
// fields keep their defaults and explicit values (including false and 0)
// override them. The result is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention CALLISTO_SECTION_FIELD (e.g. CALLISTO_VALIDATION_SECURITY_LEVEL)
// and always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies CALLISTO_* environment variables to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	setBool(&cfg.Validation.EnableSecurityValidation, "VALIDATION_ENABLE_SECURITY_VALIDATION")
	setBool(&cfg.Validation.EnableProviderValidation, "VALIDATION_ENABLE_PROVIDER_VALIDATION")
	setInt(&cfg.Validation.MaxTemplateLength, "VALIDATION_MAX_TEMPLATE_LENGTH")
	setInt(&cfg.Validation.MaxVariableCount, "VALIDATION_MAX_VARIABLE_COUNT")
	setString(&cfg.Validation.SecurityLevel, "VALIDATION_SECURITY_LEVEL")
	setDuration(&cfg.Validation.ProbeTimeout, "VALIDATION_PROBE_TIMEOUT")
	if v, ok := lookup("VALIDATION_ALLOWED_PROVIDERS"); ok {
		cfg.Validation.AllowedProviders = splitAndTrim(v)
	}

	setString(&cfg.Logging.Level, "LOGGING_LEVEL")
	setString(&cfg.Logging.Format, "LOGGING_FORMAT")
	setBool(&cfg.Logging.AddSource, "LOGGING_ADD_SOURCE")

	setBool(&cfg.Metrics.Enabled, "METRICS_ENABLED")
	setString(&cfg.Metrics.Namespace, "METRICS_NAMESPACE")
	setString(&cfg.Metrics.Subsystem, "METRICS_SUBSYSTEM")

	setBool(&cfg.Audit.Enabled, "AUDIT_ENABLED")
	setString(&cfg.Audit.Path, "AUDIT_PATH")
	setInt(&cfg.Audit.AsyncBuffer, "AUDIT_ASYNC_BUFFER")
	setDuration(&cfg.Audit.WriteTimeout, "AUDIT_WRITE_TIMEOUT")
	setInt(&cfg.Audit.RetentionDays, "AUDIT_RETENTION_DAYS")
	setString(&cfg.Audit.PruneSchedule, "AUDIT_PRUNE_SCHEDULE")

	setString(&cfg.Profiles.Path, "PROFILES_PATH")
	setBool(&cfg.Profiles.Watch, "PROFILES_WATCH")
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return v, ok
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func setBool(dst *bool, name string) {
	if v, ok := lookup(name); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, name string) {
	if v, ok := lookup(name); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if v, ok := lookup(name); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
