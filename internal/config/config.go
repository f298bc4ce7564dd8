// Package config loads the pipeline configuration from config.yaml and
// DEEPTECH_* environment variables, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Enrich      EnrichConfig      `yaml:"enrich" mapstructure:"enrich"`
	Positioning PositioningConfig `yaml:"positioning" mapstructure:"positioning"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DataConfig holds the directory layout for pipeline inputs and outputs.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	EnrichedDir  string `yaml:"enriched_dir" mapstructure:"enriched_dir"`
}

// ExtractConfig configures the EPO snapshot and publications extractors.
type ExtractConfig struct {
	DatasetURL         string `yaml:"dataset_url" mapstructure:"dataset_url"`
	APIURL             string `yaml:"api_url" mapstructure:"api_url"`
	PublicationsAPIURL string `yaml:"publications_api_url" mapstructure:"publications_api_url"`
	Headless           bool   `yaml:"headless" mapstructure:"headless"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PageDelayMs        int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	OrgDelayMs         int    `yaml:"org_delay_ms" mapstructure:"org_delay_ms"`
}

// VerifyConfig configures integrity verification thresholds.
type VerifyConfig struct {
	ExpectationsPath string  `yaml:"expectations_path" mapstructure:"expectations_path"`
	CriticalCoverage float64 `yaml:"critical_coverage" mapstructure:"critical_coverage"`
}

// EnrichConfig configures website enrichment.
type EnrichConfig struct {
	MaxPages         int     `yaml:"max_pages" mapstructure:"max_pages"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency      int     `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSec   float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxBodyBytes     int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxTextChars     int     `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	MaxCombinedChars int     `yaml:"max_combined_chars" mapstructure:"max_combined_chars"`
}

// PositioningConfig configures the schema-v1 extraction stage.
type PositioningConfig struct {
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxInputChars int     `yaml:"max_input_chars" mapstructure:"max_input_chars"`
	MaxTokens     int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEEPTECH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.enriched_dir", "data/enriched")
	v.SetDefault("extract.dataset_url", "https://dtf.epo.org/datav/public/dashboard-frontend/host_epoorg.html#/explore?dataSet=1")
	v.SetDefault("extract.api_url", "https://dtf.epo.org/datav/public/datavisualisation/api/dataset/1/applicants")
	v.SetDefault("extract.publications_api_url", "https://dtf.epo.org/datav/public/datavisualisation/api/dataset/1/publications")
	v.SetDefault("extract.headless", false)
	v.SetDefault("extract.timeout_secs", 600)
	v.SetDefault("extract.page_delay_ms", 1500)
	v.SetDefault("extract.org_delay_ms", 2000)
	v.SetDefault("verify.critical_coverage", 0.95)
	v.SetDefault("enrich.max_pages", 3)
	v.SetDefault("enrich.timeout_secs", 20)
	v.SetDefault("enrich.concurrency", 4)
	v.SetDefault("enrich.requests_per_sec", 2.0)
	v.SetDefault("enrich.max_body_bytes", 2_000_000)
	v.SetDefault("enrich.max_text_chars", 60_000)
	v.SetDefault("enrich.max_combined_chars", 180_000)
	v.SetDefault("positioning.temperature", 0.0)
	v.SetDefault("positioning.timeout_secs", 60)
	v.SetDefault("positioning.max_input_chars", 40_000)
	v.SetDefault("positioning.max_tokens", 4096)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
