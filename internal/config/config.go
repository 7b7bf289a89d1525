package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	CheckIn   CheckInConfig   `mapstructure:"checkin"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// Safe commits attendance and autofix writes immediately. New members
	// are always committed.
	Safe        bool `mapstructure:"safe"`
	BusyTimeout int  `mapstructure:"busy_timeout_ms" validate:"min=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type CheckInConfig struct {
	// BarcodeLength truncates scanned barcodes; 0 keeps them whole.
	BarcodeLength int    `mapstructure:"barcode_length" validate:"min=0"`
	ReportPath    string `mapstructure:"report_path"`
	LogDir        string `mapstructure:"log_dir"`
}

type TelemetryConfig struct {
	// OTLPEndpoint is a host:port for OTLP/gRPC metrics export. Empty
	// disables export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Load reads configuration from file (if any), then environment.
// An empty path searches for config.<ENV>.yaml in the usual places.
func Load(path string) (*Config, error) {
	v := viper.New()

	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	setDefaults(v, env)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/socman")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment", "env", env)
	}

	// Environment overrides, e.g. SOCMAN_DATABASE_PATH.
	v.SetEnvPrefix("socman")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)
	v.SetDefault("database.path", "members.db")
	v.SetDefault("database.safe", true)
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("checkin.barcode_length", 7)
	v.SetDefault("checkin.report_path", "")
	v.SetDefault("checkin.log_dir", ".")
	v.SetDefault("telemetry.otlp_endpoint", "")
}
