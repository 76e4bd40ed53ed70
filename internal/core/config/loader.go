package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// TestMode must default to true, so it is set before parsing: only an
	// explicit test_mode key in the file can switch it off.
	cfg := AppConfig{TestMode: true}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Streams.Items == "" {
		cfg.Streams.Items = "items"
	}
	if cfg.Streams.Reports == "" {
		cfg.Streams.Reports = "reports"
	}

	if cfg.Scratch.Dir == "" {
		cfg.Scratch.Dir = filepath.Join(os.TempDir(), "botkit")
	}
	if cfg.Scratch.Retention == 0 {
		cfg.Scratch.Retention = 7 * 24 * time.Hour
	}

	if cfg.Reporter.TemplateDir == "" {
		cfg.Reporter.TemplateDir = "templates"
	}
	if cfg.Reporter.TemplateFile == "" {
		cfg.Reporter.TemplateFile = "report.tmpl"
	}
	if cfg.Reporter.Salutation == "" {
		cfg.Reporter.Salutation = "Dear Sir or Madam"
	}

	// Test mode always implies drafts, regardless of mail settings.
	if cfg.TestMode {
		cfg.Mail.DraftOnly = true
	}
}
