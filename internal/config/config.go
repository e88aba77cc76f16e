// Package config loads application configuration from config.yaml and
// LAKEHOUSE_* environment variables.
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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Artifact ArtifactConfig `yaml:"artifact" mapstructure:"artifact"`
	Clean    CleanConfig    `yaml:"clean" mapstructure:"clean"`
	Features FeatureConfig  `yaml:"features" mapstructure:"features"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ArtifactConfig configures the layer artifact store.
type ArtifactConfig struct {
	Root          string `yaml:"root" mapstructure:"root"`
	SchemaVersion int    `yaml:"schema_version" mapstructure:"schema_version"`
}

// CleanConfig configures the cleaning stage. The survival constants come
// from the Charlson ten-year survival estimate; their clinical provenance
// is unverified, so they stay configurable.
type CleanConfig struct {
	SurvivalBase  float64 `yaml:"survival_base" mapstructure:"survival_base"`
	SurvivalDecay float64 `yaml:"survival_decay" mapstructure:"survival_decay"`
	MaxLOSDays    int     `yaml:"max_los_days" mapstructure:"max_los_days"`
}

// FeatureConfig configures the window feature calculator.
type FeatureConfig struct {
	GapSentinelDays int `yaml:"gap_sentinel_days" mapstructure:"gap_sentinel_days"`
	MaxWorkers      int `yaml:"max_workers" mapstructure:"max_workers"`
}

// ValidateConfig configures the validation checkpoints. GateThreshold is
// the minimum success percentage required to promote a layer.
type ValidateConfig struct {
	CleanedRules  string  `yaml:"cleaned_rules" mapstructure:"cleaned_rules"`
	GoldRules     string  `yaml:"gold_rules" mapstructure:"gold_rules"`
	GateThreshold float64 `yaml:"gate_threshold" mapstructure:"gate_threshold"`
}

// ServerConfig configures the status API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LAKEHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "lakehouse/runs.db")
	v.SetDefault("artifact.root", "lakehouse")
	v.SetDefault("artifact.schema_version", 1)
	v.SetDefault("clean.survival_base", 0.983)
	v.SetDefault("clean.survival_decay", 0.9)
	v.SetDefault("clean.max_los_days", 365)
	v.SetDefault("features.gap_sentinel_days", 999)
	v.SetDefault("features.max_workers", 8)
	v.SetDefault("validate.cleaned_rules", "rules/cleaned.yaml")
	v.SetDefault("validate.gold_rules", "rules/gold.yaml")
	v.SetDefault("validate.gate_threshold", 95.0)
	v.SetDefault("server.port", 8080)
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
