// Package config loads and validates collector configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Collector CollectorConfig  `mapstructure:"collector"`
	HTTP      HTTPConfig       `mapstructure:"http"`
	Headless  HeadlessConfig   `mapstructure:"headless"`
	DB        DBConfig         `mapstructure:"db"`
	RunLog    RunLogConfig     `mapstructure:"runlog"`
	Archive   ArchiveConfig    `mapstructure:"archive"`
	PubSub    PubSubConfig     `mapstructure:"pubsub"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Targets   []collect.Target `mapstructure:"targets"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port          int `mapstructure:"port"`
	RunTimeoutSec int `mapstructure:"run_timeout_seconds"`
}

// CollectorConfig governs the collection pipeline.
type CollectorConfig struct {
	Mode      string   `mapstructure:"mode"`
	Platforms []string `mapstructure:"platforms"`
	UserAgent string   `mapstructure:"user_agent"`
	Language  string   `mapstructure:"language"`
	Topic     string   `mapstructure:"topic"`
}

// HTTPConfig configures the static fetch tier and its retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// HeadlessConfig configures the dynamic rendering tier.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	SettleWaitMs  int  `mapstructure:"settle_wait_ms"`
}

// DBConfig controls access to the metric store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// RunLogConfig controls the JSONL append log.
type RunLogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseDir string `mapstructure:"base_dir"`
}

// ArchiveConfig selects the raw page archive provider.
type ArchiveConfig struct {
	// Provider is one of "none", "local", "gcs", "memory".
	Provider  string `mapstructure:"provider"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PubSubConfig holds metadata for run-summary notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COLLECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.run_timeout_seconds", 1800)
	v.SetDefault("collector.mode", string(collect.ModeAuto))
	v.SetDefault("collector.platforms", []string{"GENIE", "BUGS", "MELON"})
	v.SetDefault("collector.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	v.SetDefault("collector.language", "ko-KR,ko;q=0.9,en;q=0.5")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("headless.settle_wait_ms", 500)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("runlog.enabled", true)
	v.SetDefault("runlog.base_dir", "logs")
	v.SetDefault("archive.provider", "none")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch collect.FetchMode(c.Collector.Mode) {
	case collect.ModeStatic, collect.ModeDynamic, collect.ModeAuto:
	default:
		return fmt.Errorf("collector.mode must be static, dynamic, or auto")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	for _, p := range c.Collector.Platforms {
		switch collect.Platform(p) {
		case collect.PlatformGenie, collect.PlatformBugs, collect.PlatformMelon:
		default:
			return fmt.Errorf("collector.platforms: unknown platform %q", p)
		}
	}
	if collect.FetchMode(c.Collector.Mode) == collect.ModeDynamic && !c.Headless.Enabled {
		return fmt.Errorf("collector.mode dynamic requires headless.enabled")
	}
	switch c.Archive.Provider {
	case "", "none", "memory":
	case "local":
		if c.Archive.BaseDir == "" {
			return fmt.Errorf("archive.base_dir must be set for the local provider")
		}
	case "gcs":
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("archive.provider must be none, local, gcs, or memory")
	}
	if c.PubSub.Enabled {
		if c.PubSub.ProjectID == "" || c.PubSub.TopicName == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
		}
	}
	if c.RunLog.Enabled && c.RunLog.BaseDir == "" {
		return fmt.Errorf("runlog.base_dir must be set when the run log is enabled")
	}
	for i, target := range c.Targets {
		if target.Platform == "" {
			return fmt.Errorf("targets[%d]: platform is required", i)
		}
		if target.SongID == "" && target.Title == "" {
			return fmt.Errorf("targets[%d]: song_id or title is required", i)
		}
	}
	return nil
}

// Mode returns the configured fetch mode.
func (c Config) Mode() collect.FetchMode {
	return collect.FetchMode(c.Collector.Mode)
}

// EnabledPlatforms returns the platform allow-set for the engine.
func (c Config) EnabledPlatforms() map[collect.Platform]bool {
	enabled := make(map[collect.Platform]bool, len(c.Collector.Platforms))
	for _, p := range c.Collector.Platforms {
		enabled[collect.Platform(p)] = true
	}
	return enabled
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RunTimeout converts the server run budget into a duration.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Server.RunTimeoutSec) * time.Second
}
