package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "STOCK_REPORT_CONFIG"
	datasetPathEnv  = "STOCK_REPORT_DATASET"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"

	defaultDataset = "reports.csv"
	defaultTimeout = 30 * time.Second
)

// Config holds high-level settings required across the application.
type Config struct {
	Dataset    string           `yaml:"dataset"`
	Endpoints  []string         `yaml:"endpoints"`
	Scan       ScanConfig       `yaml:"scan"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ScanConfig tunes the per-endpoint early-stop policy.
type ScanConfig struct {
	SeenStopThreshold int `yaml:"seenStopThreshold"`
}

// SummarizerConfig selects the basis of the one-line summary:
// "long_summary" (default) or "document".
type SummarizerConfig struct {
	OneLineBasis string `yaml:"oneLineBasis"`
}

// OpenAIConfig defines how to reach the completion service.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseUrl"`
}

// HTTPConfig bounds the shared portal client.
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	UserAgent      string `yaml:"userAgent"`
}

// Timeout resolves the configured timeout with a sane default.
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// LoggingConfig controls console output verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = defaultConfig().Endpoints
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(datasetPathEnv); v != "" {
		c.Dataset = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Dataset != "" {
		base.Dataset = override.Dataset
	}
	if len(override.Endpoints) > 0 {
		base.Endpoints = override.Endpoints
	}

	if override.Scan.SeenStopThreshold > 0 {
		base.Scan.SeenStopThreshold = override.Scan.SeenStopThreshold
	}
	if override.Summarizer.OneLineBasis != "" {
		base.Summarizer.OneLineBasis = override.Summarizer.OneLineBasis
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}

	if override.HTTP.TimeoutSeconds > 0 {
		base.HTTP.TimeoutSeconds = override.HTTP.TimeoutSeconds
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Dataset: defaultDataset,
		Endpoints: []string{
			"https://finance.naver.com/research/industry_list.naver?searchType=upjong&upjong=%B9%DD%B5%B5%C3%BC",
			"https://finance.naver.com/research/company_list.naver?searchType=itemCode&itemCode=005930",
			"https://finance.naver.com/research/company_list.naver?searchType=itemCode&itemCode=000660",
		},
		Scan:       ScanConfig{SeenStopThreshold: 2},
		Summarizer: SummarizerConfig{OneLineBasis: "long_summary"},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		HTTP:    HTTPConfig{TimeoutSeconds: 30},
		Logging: LoggingConfig{Level: "info"},
	}
}
