package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/capitalmind/bot/core/config"
	coredatabase "github.com/capitalmind/bot/core/database"
	"github.com/capitalmind/bot/internal/generation"
	"github.com/capitalmind/bot/internal/service/entitlement"
	captelegram "github.com/capitalmind/bot/internal/telegram"
)

// QuotaConfig controls the free-tier allowance.
type QuotaConfig struct {
	FreeLimit int `yaml:"free_limit" envconfig:"QUOTA_FREE_LIMIT"`
}

// Config is the full application configuration: the reusable core settings
// plus the CapitalMind-specific sections.
type Config struct {
	Core     coreconfig.Config          `yaml:",inline"`
	Database coredatabase.Config        `yaml:"database"`
	OpenAI   generation.Config          `yaml:"openai"`
	Quota    QuotaConfig                `yaml:"quota"`
	Payments captelegram.PaymentsConfig `yaml:"payments"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads configuration from a YAML file with environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai.api_key is required")
	}
	if cfg.Quota.FreeLimit <= 0 {
		cfg.Quota.FreeLimit = entitlement.DefaultFreeLimit
	}
	cfg.Payments.Normalize()

	return &cfg, nil
}
