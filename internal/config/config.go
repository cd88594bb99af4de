// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/studentconnect/intake/internal/catalog"
	"gopkg.in/yaml.v3"
)

// Submitter names accepted in the submitters list.
const (
	SubmitterLog    = "log"
	SubmitterNATS   = "nats"
	SubmitterFile   = "file"
	SubmitterSQLite = "sqlite"
)

// Config holds all configuration values for intake.
type Config struct {
	DataDir           string                 `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel          string                 `mapstructure:"log_level" yaml:"log_level"`
	LogFile           string                 `mapstructure:"log_file" yaml:"log_file"`
	Submitters        []string               `mapstructure:"submitters" yaml:"submitters"`
	ReceiptsDir       string                 `mapstructure:"receipts_dir" yaml:"receipts_dir"`
	RequireAssessment bool                   `mapstructure:"require_assessment" yaml:"require_assessment"`
	Venue             string                 `mapstructure:"venue" yaml:"venue"`
	Pricing           catalog.Pricing        `mapstructure:"pricing" yaml:"pricing"`
	Payment           catalog.PaymentAccount `mapstructure:"payment" yaml:"payment"`
	Subjects          []catalog.Subject      `mapstructure:"subjects" yaml:"subjects"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		DataDir:     ".intake",
		LogLevel:    "info",
		Submitters:  []string{SubmitterLog, SubmitterNATS},
		ReceiptsDir: "receipts",
		Venue:       catalog.DefaultVenue,
		Pricing:     catalog.DefaultPricing(),
		Payment:     catalog.DefaultPaymentAccount(),
		Subjects:    catalog.DefaultSubjects(),
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("intake")

	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("submitters", d.Submitters)
	v.SetDefault("receipts_dir", d.ReceiptsDir)
	v.SetDefault("require_assessment", d.RequireAssessment)
	v.SetDefault("venue", d.Venue)
	v.SetDefault("pricing.cost_per_subject", d.Pricing.CostPerSubject)
	v.SetDefault("pricing.currency", d.Pricing.Currency)
	v.SetDefault("pricing.locale", d.Pricing.Locale)
	v.SetDefault("payment.bank", d.Payment.Bank)
	v.SetDefault("payment.holder", d.Payment.Holder)
	v.SetDefault("payment.account_number", d.Payment.AccountNumber)
	v.SetDefault("payment.branch_code", d.Payment.BranchCode)
	v.SetDefault("payment.reference_note", d.Payment.ReferenceNote)
	v.SetDefault("subjects", d.Subjects)

	// Setup ENV binding with INTAKE_ prefix (pricing.currency -> INTAKE_PRICING_CURRENCY)
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit ENV bindings so Unmarshal sees keys that only exist in the environment
	for _, key := range []string{
		"data_dir",
		"log_level",
		"log_file",
		"submitters",
		"receipts_dir",
		"require_assessment",
		"venue",
		"pricing.cost_per_subject",
		"pricing.currency",
		"pricing.locale",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside the wizard.
func (c *Config) Validate() error {
	if c.Pricing.CostPerSubject < 0 {
		return fmt.Errorf("pricing.cost_per_subject must be >= 0, got %d", c.Pricing.CostPerSubject)
	}
	if len(c.Subjects) == 0 {
		return fmt.Errorf("subjects: at least one subject is required")
	}
	seen := make(map[string]bool, len(c.Subjects))
	for i, s := range c.Subjects {
		if s.ID == "" {
			return fmt.Errorf("subjects[%d]: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("subjects[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	for _, name := range c.Submitters {
		switch name {
		case SubmitterLog, SubmitterNATS, SubmitterFile, SubmitterSQLite:
		default:
			return fmt.Errorf("submitters: unknown submitter %q (use log, nats, file or sqlite)", name)
		}
	}
	return nil
}

// Catalog builds the subject catalog from the configured subjects.
func (c *Config) Catalog() *catalog.Catalog {
	return catalog.New(c.Subjects)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/intake/intake.yml or $XDG_CONFIG_HOME/intake/intake.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "intake", "intake.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "intake", "intake.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "intake.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
