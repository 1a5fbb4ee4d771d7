// Package config loads the CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. Its absence is not an
// error.
const DefaultPath = "reshape.yaml"

// Config mirrors reshape.yaml.
type Config struct {
	LogLevel   string         `mapstructure:"log_level"`
	SchemasDir string         `mapstructure:"schemas_dir"`
	Strict     bool           `mapstructure:"strict"`
	HTTP       HTTPConfig     `mapstructure:"http"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Pipeline   PipelineConfig `mapstructure:"pipeline"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type PipelineConfig struct {
	BatchSize   int `mapstructure:"batch_size"`
	Concurrency int `mapstructure:"concurrency"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:   "info",
		SchemasDir: "schemas",
		HTTP:       HTTPConfig{Addr: ":8080"},
		Redis:      RedisConfig{Addr: "localhost:6379", Prefix: "reshape:"},
		Pipeline:   PipelineConfig{BatchSize: 100, Concurrency: 4},
	}
}

// Load reads path over the defaults. A missing file is only an error when
// explicit is true.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML data into cfg. Keys absent from data keep their value.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
