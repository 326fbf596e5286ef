// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config holds the misfit settings and loads them from a YAML file,
// MISFIT_* environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by NewViper.
const EnvPrefix = "MISFIT"

// FileName is the config file name inside the data directory.
const FileName = "config.yaml"

// RPCConfig holds node RPC connection settings.
type RPCConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	PushURL string `mapstructure:"push_url"`
	Job     string `mapstructure:"job"`
}

// Config is the full application configuration.
type Config struct {
	DataDir       string        `mapstructure:"data_dir"`
	Network       string        `mapstructure:"network"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFile       string        `mapstructure:"log_file"`
	RPC           RPCConfig     `mapstructure:"rpc"`
	WalletName    string        `mapstructure:"wallet_name"`
	NodeBinary    string        `mapstructure:"node_binary"`
	StartAttempts int           `mapstructure:"start_attempts"`
	Seed          string        `mapstructure:"seed"`
	Workers       int           `mapstructure:"workers"`
	Metrics       MetricsConfig `mapstructure:"metrics"`
}

// DefaultDataDir returns ~/.misfit, or .misfit in the working directory when
// the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".misfit"
	}
	return filepath.Join(home, ".misfit")
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		Network:       "regtest",
		LogLevel:      "info",
		WalletName:    "bitcoinhos",
		NodeBinary:    "bitcoind",
		StartAttempts: 15,
		Workers:       1,
		Metrics:       MetricsConfig{Job: "misfit"},
	}
}

// SetDefaults registers every default with v, which also makes the keys
// known to viper's environment lookup.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("network", d.Network)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("rpc.url", d.RPC.URL)
	v.SetDefault("rpc.user", d.RPC.User)
	v.SetDefault("rpc.password", d.RPC.Password)
	v.SetDefault("wallet_name", d.WalletName)
	v.SetDefault("node_binary", d.NodeBinary)
	v.SetDefault("start_attempts", d.StartAttempts)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("metrics.push_url", d.Metrics.PushURL)
	v.SetDefault("metrics.job", d.Metrics.Job)
}

// NewViper returns a viper instance with defaults registered and MISFIT_*
// environment variables bound. Nested keys use underscores, so rpc.url
// reads MISFIT_RPC_URL.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the YAML file at path into v. A missing file yields
// ErrConfigNotFound.
func ReadFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, path, err)
	}
	return nil
}

// Load decodes the merged settings of v. Precedence is viper's: bound flags,
// then environment, then config file, then defaults.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LogFile = expandHome(cfg.LogFile)
	return cfg, nil
}

// LoadConfig reads the YAML file at path on top of the defaults. Keys the
// file omits keep their default values; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := ReadFile(v, path); err != nil {
		return Config{}, err
	}
	return Load(v)
}

// SaveConfig writes cfg to path as YAML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	v := viper.New()
	v.Set("data_dir", cfg.DataDir)
	v.Set("network", cfg.Network)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_file", cfg.LogFile)
	v.Set("rpc.url", cfg.RPC.URL)
	v.Set("rpc.user", cfg.RPC.User)
	v.Set("rpc.password", cfg.RPC.Password)
	v.Set("wallet_name", cfg.WalletName)
	v.Set("node_binary", cfg.NodeBinary)
	v.Set("start_attempts", cfg.StartAttempts)
	v.Set("seed", cfg.Seed)
	v.Set("workers", cfg.Workers)
	v.Set("metrics.push_url", cfg.Metrics.PushURL)
	v.Set("metrics.job", cfg.Metrics.Job)

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
