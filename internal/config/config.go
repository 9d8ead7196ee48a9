package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir         string `yaml:"data_dir"`
	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`
	CorpusName      string `yaml:"corpus_name"`

	SimilarityThreshold       float64 `yaml:"similarity_threshold"`
	BucketWidth               int     `yaml:"bucket_width"`
	BucketRadius              int     `yaml:"bucket_radius"`
	MaxReportedDuplicates     int     `yaml:"max_reported_duplicates"`
	MaxReportedNearDuplicates int     `yaml:"max_reported_near_duplicates"`
	ScanWorkers               int     `yaml:"scan_workers"`

	AnalysisSchedule string `yaml:"analysis_schedule"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	SlackAppToken   string `yaml:"slack_app_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// LoadConfig reads the YAML config file (path, or $CONFIG_PATH, or
// ./config.yaml), applies env var overrides, fills defaults, and validates.
// A missing config file is fine; env vars and defaults still apply.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = "config.yaml"
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
		}
	}
	// Zero is a meaningful setting for these two (threshold 0 matches
	// everything, radius 0 compares same-bucket only), so their defaults
	// apply only when the key is genuinely absent.
	thresholdSet := false
	radiusSet := false

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		var keys struct {
			SimilarityThreshold *float64 `yaml:"similarity_threshold"`
			BucketRadius        *int     `yaml:"bucket_radius"`
		}
		if err := yaml.Unmarshal(data, &keys); err == nil {
			thresholdSet = keys.SimilarityThreshold != nil
			radiusSet = keys.BucketRadius != nil
		}
	}

	// Env vars override YAML values.
	envOverride(&cfg.DataDir, "DATA_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.CorpusName, "CORPUS_NAME")
	envOverride(&cfg.AnalysisSchedule, "ANALYSIS_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.Timezone, "TIMEZONE")
	if err := envOverrideFloat(&cfg.SimilarityThreshold, "SIMILARITY_THRESHOLD"); err != nil {
		return cfg, err
	}
	if os.Getenv("SIMILARITY_THRESHOLD") != "" {
		thresholdSet = true
	}
	if os.Getenv("BUCKET_RADIUS") != "" {
		radiusSet = true
	}
	intOverrides := []struct {
		field *int
		key   string
	}{
		{&cfg.BucketWidth, "BUCKET_WIDTH"},
		{&cfg.BucketRadius, "BUCKET_RADIUS"},
		{&cfg.MaxReportedDuplicates, "MAX_REPORTED_DUPLICATES"},
		{&cfg.MaxReportedNearDuplicates, "MAX_REPORTED_NEAR_DUPLICATES"},
		{&cfg.ScanWorkers, "SCAN_WORKERS"},
	}
	for _, o := range intOverrides {
		if err := envOverrideInt(o.field, o.key); err != nil {
			return cfg, err
		}
	}

	// Defaults
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./phrasebot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.CorpusName == "" {
		cfg.CorpusName = "narrative-seeds"
	}
	if !thresholdSet {
		cfg.SimilarityThreshold = 0.85
	}
	if cfg.BucketWidth == 0 {
		cfg.BucketWidth = 10
	}
	if !radiusSet {
		cfg.BucketRadius = 2
	}
	if cfg.MaxReportedDuplicates == 0 {
		cfg.MaxReportedDuplicates = 50
	}
	if cfg.MaxReportedNearDuplicates == 0 {
		cfg.MaxReportedNearDuplicates = 100
	}
	if cfg.ScanWorkers == 0 {
		cfg.ScanWorkers = 1
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if cfg.Timezone == "Local" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return cfg, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg, cfg.Validate()
}

// Validate rejects unusable analysis settings before any scanning starts.
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold %.2f out of range [0,1]", c.SimilarityThreshold)
	}
	if c.BucketWidth <= 0 {
		return fmt.Errorf("bucket_width must be positive, got %d", c.BucketWidth)
	}
	if c.BucketRadius < 0 {
		return fmt.Errorf("bucket_radius must be non-negative, got %d", c.BucketRadius)
	}
	if c.MaxReportedDuplicates < 1 {
		return fmt.Errorf("max_reported_duplicates must be >= 1, got %d", c.MaxReportedDuplicates)
	}
	if c.MaxReportedNearDuplicates < 1 {
		return fmt.Errorf("max_reported_near_duplicates must be >= 1, got %d", c.MaxReportedNearDuplicates)
	}
	if c.ScanWorkers < 1 {
		return fmt.Errorf("scan_workers must be >= 1, got %d", c.ScanWorkers)
	}
	switch c.LLMProvider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("llm_provider must be 'anthropic' or 'openai', got %q", c.LLMProvider)
	}
	return nil
}

// SlackConfigured reports whether the bot mode has what it needs.
func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

// LLMConfigured reports whether a report digest can be generated.
func (c Config) LLMConfigured() bool {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIAPIKey != ""
	default:
		return c.AnthropicAPIKey != ""
	}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
