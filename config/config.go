// Package config loads process-start configuration for the contact
// discovery service: an optional YAML file, overridden by environment
// variables, producing a Config fixed for the lifetime of the process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every parameter fixed at process start. Delta, the
// incremental drain period, and MaxContacts must not change at runtime:
// doing so would invalidate already-stored leaky-bucket drain-empty
// timestamps, which were computed against the leak rate in effect when
// they were written.
type Config struct {
	ListenAddr               string `yaml:"listen_addr"`
	DeltaSeconds             int64  `yaml:"delta_seconds"`
	IncrementalPeriodSeconds int64  `yaml:"incremental_period_seconds"`
	MaxContacts              int    `yaml:"max_contacts"`
	LogFormat                string `yaml:"log_format"`
}

// Default returns the configuration defaults named in the service
// specification: a 10-day delta window, a 1-day incremental drain
// period, and a 20,000-contact cap.
func Default() Config {
	return Config{
		ListenAddr:               ":8080",
		DeltaSeconds:             864000,
		IncrementalPeriodSeconds: 86400,
		MaxContacts:              20000,
		LogFormat:                "text",
	}
}

// Load builds a Config starting from Default, overlaying an optional YAML
// file at path (skipped if path is empty), then overlaying environment
// variables. Environment variables always win over the file so operators
// can override a checked-in config without editing it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ICD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ICD_DELTA_SECONDS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: ICD_DELTA_SECONDS: %w", err)
		}
		cfg.DeltaSeconds = n
	}
	if v := os.Getenv("ICD_P_INC_SECONDS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: ICD_P_INC_SECONDS: %w", err)
		}
		cfg.IncrementalPeriodSeconds = n
	}
	if v := os.Getenv("ICD_MAX_CONTACTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: ICD_MAX_CONTACTS: %w", err)
		}
		cfg.MaxContacts = n
	}
	if v := os.Getenv("ICD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// Delta returns the delta-set expiration window as a time.Duration.
func (c Config) Delta() time.Duration {
	return time.Duration(c.DeltaSeconds) * time.Second
}

// IncrementalPeriod returns the incremental-sync bucket drain period as a
// time.Duration.
func (c Config) IncrementalPeriod() time.Duration {
	return time.Duration(c.IncrementalPeriodSeconds) * time.Second
}
