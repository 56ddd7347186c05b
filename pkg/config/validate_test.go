package config

import (
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default configuration failed validation: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("nil configuration should fail validation")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "non-positive template length",
			mutate:  func(c *Config) { c.Validation.MaxTemplateLength = 0 },
			wantMsg: "max_template_length",
		},
		{
			name:    "non-positive variable count",
			mutate:  func(c *Config) { c.Validation.MaxVariableCount = -1 },
			wantMsg: "max_variable_count",
		},
		{
			name:    "unknown security level",
			mutate:  func(c *Config) { c.Validation.SecurityLevel = "extreme" },
			wantMsg: "security_level",
		},
		{
			name:    "non-positive probe timeout",
			mutate:  func(c *Config) { c.Validation.ProbeTimeout = 0 },
			wantMsg: "probe_timeout",
		},
		{
			name:    "empty allowed providers",
			mutate:  func(c *Config) { c.Validation.AllowedProviders = nil },
			wantMsg: "allowed_providers",
		},
		{
			name:    "blank allowed provider entry",
			mutate:  func(c *Config) { c.Validation.AllowedProviders = []string{"openai", ""} },
			wantMsg: "allowed_providers[1]",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantMsg: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: "logging.format",
		},
		{
			name: "audit enabled without path",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.Path = ""
			},
			wantMsg: "audit.path",
		},
		{
			name: "audit non-positive buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.AsyncBuffer = 0
			},
			wantMsg: "audit.async_buffer",
		},
		{
			name: "audit negative retention",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.RetentionDays = -1
			},
			wantMsg: "audit.retention_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

// TestValidate_AuditDisabledSkipsAuditChecks tests that audit fields are
// only validated when audit is enabled.
func TestValidate_AuditDisabledSkipsAuditChecks(t *testing.T) {
	cfg := Default()
	cfg.Audit.Enabled = false
	cfg.Audit.Path = ""
	cfg.Audit.AsyncBuffer = 0

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled audit section should not be validated: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Validation.MaxTemplateLength != DefaultMaxTemplateLength {
		t.Errorf("MaxTemplateLength = %d, want %d", cfg.Validation.MaxTemplateLength, DefaultMaxTemplateLength)
	}
	if cfg.Validation.SecurityLevel != DefaultSecurityLevel {
		t.Errorf("SecurityLevel = %q, want %q", cfg.Validation.SecurityLevel, DefaultSecurityLevel)
	}
	if len(cfg.Validation.AllowedProviders) != 5 {
		t.Errorf("AllowedProviders = %v", cfg.Validation.AllowedProviders)
	}
	if cfg.Audit.PruneSchedule != DefaultAuditPruneSchedule {
		t.Errorf("PruneSchedule = %q, want %q", cfg.Audit.PruneSchedule, DefaultAuditPruneSchedule)
	}

	// Booleans are policy choices, not zero-value accidents; ApplyDefaults
	// leaves them alone.
	if cfg.Validation.EnableSecurityValidation || cfg.Validation.EnableProviderValidation {
		t.Error("ApplyDefaults must not flip boolean flags")
	}
}

// TestApplyDefaults_PreservesSetValues tests that explicit values survive.
func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.Validation.MaxTemplateLength = 123
	cfg.Validation.AllowedProviders = []string{"openai"}
	cfg.Logging.Level = "warn"

	ApplyDefaults(cfg)

	if cfg.Validation.MaxTemplateLength != 123 {
		t.Errorf("MaxTemplateLength = %d, want 123", cfg.Validation.MaxTemplateLength)
	}
	if len(cfg.Validation.AllowedProviders) != 1 {
		t.Errorf("AllowedProviders = %v", cfg.Validation.AllowedProviders)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}
