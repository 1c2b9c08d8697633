// Package config loads the engine's runtime configuration via viper,
// following the teacher's internal/config.go (renamed into its own
// package, and with the now-removed storage-mode/server settings replaced
// by the buffer pool and data-directory settings this engine actually
// uses).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for a minirel instance.
type Config struct {
	Storage struct {
		// DataDir is the directory LocalFileStore creates relation files in.
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"storage"`

	BufferPool struct {
		// Frames is the fixed number of buffer pool frames (spec.md §4.3
		// "construction").
		Frames int `mapstructure:"frames"`
	} `mapstructure:"buffer_pool"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Default returns the configuration used when no config file is supplied.
func Default() Config {
	var c Config
	c.Storage.DataDir = "./data"
	c.BufferPool.Frames = 64
	c.Log.Level = "info"
	return c
}

// Load reads and unmarshals a YAML configuration file at path, defaulting
// any field the file doesn't set.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	v.SetDefault("buffer_pool.frames", cfg.BufferPool.Frames)
	v.SetDefault("log.level", cfg.Log.Level)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
