package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"truckspec/internal/filewalker"
	"truckspec/internal/parser"
)

// Config holds every setting of a run. It is passed explicitly to the
// aggregator, the exporters and the sinks.
type Config struct {
	Root            string `mapstructure:"root"`
	Output          string `mapstructure:"output"`
	Pretty          bool   `mapstructure:"pretty"`
	TSVOutput       string `mapstructure:"tsv_output"`
	Extension       string `mapstructure:"extension"`
	DefPrefix       string `mapstructure:"def_prefix"`
	RequireRPMLimit bool   `mapstructure:"require_rpm_limit"`
	WorkerCount     int    `mapstructure:"workers"`
	BatchSize       int    `mapstructure:"batch_size"`
	LogLevel        string `mapstructure:"log_level"`
	DatabaseURL     string `mapstructure:"database_url"`
	Neo4jURI        string `mapstructure:"neo4j_uri"`
	Neo4jUser       string `mapstructure:"neo4j_user"`
	Neo4jPassword   string `mapstructure:"neo4j_password"`
}

// New returns a viper instance with defaults, TRUCKSPEC_* environment
// variables and the optional truckspec.yaml search paths registered.
// A .env file in the working directory is loaded into the environment first.
func New() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetDefault("root", ".")
	v.SetDefault("output", "trucks.json")
	v.SetDefault("pretty", true)
	v.SetDefault("tsv_output", "")
	v.SetDefault("extension", filewalker.DefaultExtension)
	v.SetDefault("def_prefix", parser.DefaultDefPrefix)
	v.SetDefault("require_rpm_limit", false)
	v.SetDefault("workers", 1)
	v.SetDefault("batch_size", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("neo4j_uri", "")
	v.SetDefault("neo4j_user", "neo4j")
	v.SetDefault("neo4j_password", "")

	v.SetConfigName("truckspec")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "truckspec"))
	}

	v.SetEnvPrefix("TRUCKSPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &cfg, nil
}

// ParserOptions returns the record building options of the config.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		DefPrefix:       c.DefPrefix,
		RequireRPMLimit: c.RequireRPMLimit,
	}
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
