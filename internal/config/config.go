// Package config loads and validates the pipeline's configuration: a
// minimal ambient HTTP surface, the profiles driving acquisition and
// relevance, the ArXiv and Feishu endpoints, and the ambient retry and
// circuit-breaker defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"arxivsync/internal/errors"
)

// Config is the complete application configuration.
type Config struct {
	Server struct {
		Port int    `mapstructure:"port" validate:"min=1,max=65535"`
		Host string `mapstructure:"host"`
		Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
	} `mapstructure:"server"`

	NATS NATSConfig `mapstructure:"nats"`

	ArXiv ArXivConfig `mapstructure:"arxiv"`

	Feishu FeishuConfig `mapstructure:"feishu"`

	Profiles []ProfileConfig `mapstructure:"profiles"`

	Scheduler struct {
		Enabled  bool   `mapstructure:"enabled"`
		Interval string `mapstructure:"interval"`
	} `mapstructure:"scheduler"`

	Logging struct {
		Level     string `mapstructure:"level" validate:"oneof=debug info warn error"`
		Format    string `mapstructure:"format" validate:"oneof=json text"`
		AddSource bool   `mapstructure:"add_source"`
		Output    string `mapstructure:"output" validate:"oneof=stdout stderr file"`
		FilePath  string `mapstructure:"file_path"`
	} `mapstructure:"logging"`

	Circuit struct {
		Enabled          bool   `mapstructure:"enabled"`
		FailureThreshold int    `mapstructure:"failure_threshold"`
		SuccessThreshold int    `mapstructure:"success_threshold"`
		Timeout          string `mapstructure:"timeout"`
		MaxRequests      int    `mapstructure:"max_requests"`
		SlidingWindow    string `mapstructure:"sliding_window"`
		MinRequestCount  int    `mapstructure:"min_request_count"`
	} `mapstructure:"circuit"`

	Retry struct {
		Enabled       bool    `mapstructure:"enabled"`
		MaxAttempts   int     `mapstructure:"max_attempts"`
		InitialDelay  string  `mapstructure:"initial_delay"`
		MaxDelay      string  `mapstructure:"max_delay"`
		BackoffFactor float64 `mapstructure:"backoff_factor"`
		Jitter        bool    `mapstructure:"jitter"`
	} `mapstructure:"retry"`

	Monitoring struct {
		Enabled     bool   `mapstructure:"enabled"`
		MetricsPort int    `mapstructure:"metrics_port"`
		HealthPath  string `mapstructure:"health_path"`
	} `mapstructure:"monitoring"`
}

// NATSConfig parameterizes the optional cache backend.
type NATSConfig struct {
	Enabled        bool           `mapstructure:"enabled"`
	URL            string         `mapstructure:"url"`
	ClientID       string         `mapstructure:"client_id"`
	BucketName     string         `mapstructure:"bucket_name"`
	ConnectTimeout string         `mapstructure:"connect_timeout"`
	Embedded       EmbeddedConfig `mapstructure:"embedded"`
}

// EmbeddedConfig parameterizes an in-process NATS server, used in place
// of an external deployment for local development or single-box runs.
type EmbeddedConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	StoreDir string `mapstructure:"store_dir"`
}

// ArXivConfig parameterizes the acquisition engine.
type ArXivConfig struct {
	BaseURL              string `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout       string `mapstructure:"request_timeout"`
	MinRequestInterval   string `mapstructure:"min_request_interval"`
	MaxRetries           int    `mapstructure:"max_retries" validate:"min=0"`
	PageSizes            []int  `mapstructure:"page_sizes"`
	EmptyPageStreakLimit int    `mapstructure:"empty_page_streak_limit" validate:"min=1"`
	MaxDaysPerBatch      int    `mapstructure:"max_days_per_batch" validate:"min=1"`
	BatchOverlapDays     int    `mapstructure:"batch_overlap_days" validate:"min=0"`
	MinBatchInterval     string `mapstructure:"min_batch_interval"`
}

// FeishuConfig carries the credentials and endpoint for the remote table
// and chat API. Names are fixed by convention and treated as opaque.
type FeishuConfig struct {
	BaseURL            string `mapstructure:"base_url" validate:"required,url"`
	AppID              string `mapstructure:"app_id"`
	AppSecret          string `mapstructure:"app_secret"`
	UserToken          string `mapstructure:"user_token"`
	BitableAppToken    string `mapstructure:"bitable_app_token" validate:"required"`
	RelationsTableID   string `mapstructure:"relations_table_id"`
	MinPapersThreshold int    `mapstructure:"min_papers_threshold"`
	BatchSize          int    `mapstructure:"batch_size"`
}

// ProfileConfig is one research-interest profile: its keyword spec plus
// the display name used to derive its remote table.
type ProfileConfig struct {
	ProfileID                  string   `mapstructure:"profile_id" validate:"required"`
	DisplayName                string   `mapstructure:"display_name" validate:"required"`
	Preset                     string   `mapstructure:"preset"`
	RawInterest                []string `mapstructure:"raw_interest"`
	Exclude                    []string `mapstructure:"exclude"`
	Required                   []string `mapstructure:"required"`
	RequiredFuzzyMatch         bool     `mapstructure:"required_fuzzy_match"`
	RequiredSimilarityThreshold float64 `mapstructure:"required_similarity_threshold"`
	SyncThreshold              float64  `mapstructure:"sync_threshold"`
	Categories                 []string `mapstructure:"categories"`
	Advanced                   bool     `mapstructure:"advanced"`
}

// LoadConfig loads configuration from the default path.
func LoadConfig() (*Config, error) {
	return LoadConfigFromPath("configs/config.yaml")
}

// LoadConfigFromPath loads and validates configuration from a specific
// path, falling back to environment variables under the ARXIVSYNC prefix.
func LoadConfigFromPath(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("ARXIVSYNC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.validateProfiles(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateProfiles enforces error kind 4 of the error taxonomy:
// configuration invalid (no profiles, or a profile with no raw_interest,
// preset, or required keywords) aborts the pipeline before any external
// call.
func (c *Config) validateProfiles() error {
	if len(c.Profiles) == 0 {
		return errors.NewConfigError("at least one profile is required", "profiles")
	}
	for _, p := range c.Profiles {
		if len(p.RawInterest) == 0 && p.Preset == "" && len(p.Required) == 0 {
			return errors.NewConfigError(
				fmt.Sprintf("profile %q has no raw_interest, preset, or required keywords", p.ProfileID),
				"raw_interest")
		}
	}
	return nil
}

// ParseDuration parses a duration string, falling back to the given
// default on empty input or parse failure.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "debug"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release"
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("nats.enabled", false)
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.client_id", "arxivsync")
	viper.SetDefault("nats.bucket_name", "arxivsync-cache")
	viper.SetDefault("nats.connect_timeout", "5s")
	viper.SetDefault("nats.embedded.enabled", false)
	viper.SetDefault("nats.embedded.host", "127.0.0.1")
	viper.SetDefault("nats.embedded.port", 4222)
	viper.SetDefault("nats.embedded.store_dir", "./data/nats")

	viper.SetDefault("arxiv.base_url", "http://export.arxiv.org/api/query")
	viper.SetDefault("arxiv.request_timeout", "30s")
	viper.SetDefault("arxiv.min_request_interval", "3s")
	viper.SetDefault("arxiv.max_retries", 3)
	viper.SetDefault("arxiv.page_sizes", []int{500, 250, 100, 50, 10})
	viper.SetDefault("arxiv.empty_page_streak_limit", 3)
	viper.SetDefault("arxiv.max_days_per_batch", 7)
	viper.SetDefault("arxiv.batch_overlap_days", 0)
	viper.SetDefault("arxiv.min_batch_interval", "1s")

	viper.SetDefault("feishu.base_url", "https://open.feishu.cn/open-apis")
	viper.SetDefault("feishu.min_papers_threshold", 1)
	viper.SetDefault("feishu.batch_size", 20)

	viper.SetDefault("scheduler.enabled", false)
	viper.SetDefault("scheduler.interval", "1h")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("circuit.enabled", true)
	viper.SetDefault("circuit.failure_threshold", 5)
	viper.SetDefault("circuit.success_threshold", 2)
	viper.SetDefault("circuit.timeout", "30s")
	viper.SetDefault("circuit.max_requests", 1)
	viper.SetDefault("circuit.sliding_window", "1m")
	viper.SetDefault("circuit.min_request_count", 5)

	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.initial_delay", "1s")
	viper.SetDefault("retry.max_delay", "30s")
	viper.SetDefault("retry.backoff_factor", 2.0)
	viper.SetDefault("retry.jitter", true)

	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_port", 9090)
	viper.SetDefault("monitoring.health_path", "/health")
}
