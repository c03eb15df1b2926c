/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads labelregistry settings from defaults, an optional YAML
// file, a .env file and LABELREGISTRY_* environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/logging"
)

// EnvPrefix is prepended to every environment override, e.g. LABELREGISTRY_BACKEND.
const EnvPrefix = "LABELREGISTRY"

// Backend names.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

// Config holds all configuration options.
type Config struct {
	Backend      string         `mapstructure:"backend"`
	SaveDelay    time.Duration  `mapstructure:"save_delay"`
	MaxSaveDelay time.Duration  `mapstructure:"max_save_delay"`
	Log          LogConfig      `mapstructure:"log"`
	File         FileConfig     `mapstructure:"file"`
	SQLite       SQLiteConfig   `mapstructure:"sqlite"`
	DynamoDB     DynamoDBConfig `mapstructure:"dynamodb"`
	Redis        RedisConfig    `mapstructure:"redis"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // DEBUG, INFO, WARN or ERROR
	Format string `mapstructure:"format"` // "text" (default) or "json"
}

// FileConfig configures the JSON file backend.
type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DynamoDBConfig configures the DynamoDB backend. Empty keys select the
// default AWS credential chain.
type DynamoDBConfig struct {
	Region    string `mapstructure:"region"`
	Table     string `mapstructure:"table"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Backend:      BackendFile,
		SaveDelay:    10 * time.Second,
		MaxSaveDelay: 60 * time.Second,
		Log: LogConfig{
			Level:  logging.LevelInfo,
			Format: logging.FormatText,
		},
		File:     FileConfig{Dir: ".labelregistry"},
		SQLite:   SQLiteConfig{Path: "labelregistry.db"},
		DynamoDB: DynamoDBConfig{Region: "us-east-1"},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "labelregistry:"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("save_delay", d.SaveDelay)
	v.SetDefault("max_save_delay", d.MaxSaveDelay)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("file.dir", d.File.Dir)
	v.SetDefault("sqlite.path", d.SQLite.Path)
	v.SetDefault("dynamodb.region", d.DynamoDB.Region)
	v.SetDefault("dynamodb.table", d.DynamoDB.Table)
	v.SetDefault("dynamodb.access_key", d.DynamoDB.AccessKey)
	v.SetDefault("dynamodb.secret_key", d.DynamoDB.SecretKey)
	v.SetDefault("dynamodb.endpoint", d.DynamoDB.Endpoint)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
}

// New returns a viper instance with defaults, env binding and, when path is
// non-empty, the given YAML file. Without a path, ./labelregistry.yaml is used
// if it exists.
func New(path string) (*viper.Viper, error) {
	// .env is optional; variables may be set by other means
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return v, nil
	}

	v.AddConfigPath(".")
	v.SetConfigName("labelregistry")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is New followed by FromViper.
func Load(path string) (Config, error) {
	v, err := New(path)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// Validate reports every invalid setting as a ValidationError.
func (c Config) Validate() error {
	var errs []error
	invalid := func(field, msg string) {
		errs = append(errs, errors.NewValidationError(field, msg))
	}

	switch c.Backend {
	case BackendFile:
		if strings.TrimSpace(c.File.Dir) == "" {
			invalid("file.dir", "required for the file backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			invalid("sqlite.path", "required for the sqlite backend")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" {
			invalid("dynamodb.table", "required for the dynamodb backend")
		}
		if c.DynamoDB.Region == "" {
			invalid("dynamodb.region", "required for the dynamodb backend")
		}
		if (c.DynamoDB.AccessKey == "") != (c.DynamoDB.SecretKey == "") {
			invalid("dynamodb.secret_key", "access_key and secret_key must be set together")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			invalid("redis.addr", "required for the redis backend")
		}
		if c.Redis.DB < 0 {
			invalid("redis.db", "must not be negative")
		}
	default:
		invalid("backend", fmt.Sprintf("unknown backend %q (want file, sqlite, dynamodb or redis)", c.Backend))
	}

	if c.SaveDelay < 0 {
		invalid("save_delay", "must not be negative")
	}
	if c.MaxSaveDelay < 0 {
		invalid("max_save_delay", "must not be negative")
	}
	if c.MaxSaveDelay > 0 && c.MaxSaveDelay < c.SaveDelay {
		invalid("max_save_delay", "must be at least save_delay")
	}
	if !logging.ValidLevel(c.Log.Level) {
		invalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	if f := strings.ToLower(c.Log.Format); f != logging.FormatText && f != logging.FormatJSON {
		invalid("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}

	return stderrors.Join(errs...)
}
