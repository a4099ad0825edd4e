package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type EngineConfig struct {
	// EvePath is the sensor's EVE JSON log, appended and rotated by
	// Suricata outside this process.
	EvePath string `mapstructure:"eve_path"`
	// DataDir holds the files this engine owns: the serialized alert
	// history and the ingestion checkpoint.
	DataDir         string `mapstructure:"data_dir"`
	HistoryCapacity int    `mapstructure:"history_capacity"`
	// DefaultLimit applies when /api/alerts is queried without a limit.
	DefaultLimit int `mapstructure:"default_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("engine.eve_path", "/var/log/suricata/eve.json")
	v.SetDefault("engine.data_dir", "alerts-history")
	v.SetDefault("engine.history_capacity", 10000)
	v.SetDefault("engine.default_limit", 200)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/evewatch")
	}

	// Environment variables override
	v.SetEnvPrefix("EVEWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Engine.HistoryCapacity <= 0 {
		return nil, fmt.Errorf("engine.history_capacity must be positive, got %d", cfg.Engine.HistoryCapacity)
	}

	return &cfg, nil
}
