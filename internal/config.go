package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "devdaily"

type GitHubConfig struct {
	Token    string `yaml:"token,omitempty" envconfig:"GITHUB_TOKEN"`
	Username string `yaml:"username,omitempty" envconfig:"GITHUB_USERNAME"`
}

type LinearConfig struct {
	APIKey string `yaml:"api_key,omitempty" envconfig:"LINEAR_API_KEY"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url,omitempty" envconfig:"SLACK_WEBHOOK_URL"`
}

type Config struct {
	JournalDir    string        `yaml:"journal_dir" envconfig:"JOURNAL_DIR"`
	LookbackDays  int           `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
	RetentionDays int           `yaml:"retention_days" envconfig:"RETENTION_DAYS"`
	RecallLimit   int           `yaml:"recall_limit" envconfig:"RECALL_LIMIT"`
	SourceTimeout time.Duration `yaml:"source_timeout" envconfig:"SOURCE_TIMEOUT"`
	LogLevel      string        `yaml:"log_level,omitempty" envconfig:"LOG_LEVEL"`
	GitHub        GitHubConfig  `yaml:"github,omitempty"`
	Linear        LinearConfig  `yaml:"linear,omitempty"`
	Slack         SlackConfig   `yaml:"slack,omitempty"`
}

func (c *Config) GitHubEnabled() bool { return c.GitHub.Token != "" }
func (c *Config) LinearEnabled() bool { return c.Linear.APIKey != "" }
func (c *Config) SlackEnabled() bool  { return c.Slack.WebhookURL != "" }

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devdaily"
	}
	return filepath.Join(home, ".devdaily")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func DefaultConfig() *Config {
	return &Config{
		JournalDir:    filepath.Join(DefaultConfigDir(), "journal"),
		LookbackDays:  7,
		RetentionDays: 90,
		RecallLimit:   10,
		SourceTimeout: 10 * time.Second,
		LogLevel:      "warn",
	}
}

// LoadConfig reads the YAML config at path (the default path when empty) and
// applies DEVDAILY_* environment overrides on top. A missing file is not an
// error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if cfg.LookbackDays < 1 {
		cfg.LookbackDays = 7
	}
	if cfg.RetentionDays < 1 {
		cfg.RetentionDays = 90
	}
	if cfg.RecallLimit < 1 {
		cfg.RecallLimit = 10
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = 10 * time.Second
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
