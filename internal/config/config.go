// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads cmpurge settings from defaults, cmpurge.yaml, CMPURGE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "cmpurge"
	envPrefix  = "cmpurge"
)

// Config is the full set of settings. Credentials never live here: the
// master key is only accepted as a positional argument.
type Config struct {
	API struct {
		BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
		Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
		UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	} `mapstructure:"api" yaml:"api"`
	Purge struct {
		Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
	} `mapstructure:"purge" yaml:"purge"`
	Journal struct {
		Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	} `mapstructure:"journal" yaml:"journal"`
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	Language string `mapstructure:"language" yaml:"language"`
	Log      struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
}

// FlagKeys maps command-line flag names to the config keys they override.
// Flags not listed here are not configuration.
var FlagKeys = map[string]string{
	"base-url":      "api.base_url",
	"timeout":       "api.timeout",
	"user-agent":    "api.user_agent",
	"parallel":      "purge.parallelism",
	"database.type": "database.type",
	"database.dsn":  "database.dsn",
	"language":      "language",
	"log-level":     "log.level",
}

// Defaults returns the built-in default values keyed by config key.
func Defaults() map[string]any {
	return map[string]any{
		"api.base_url":      "https://api.cloudmine.me/",
		"api.timeout":       "0s",
		"api.user_agent":    "",
		"purge.parallelism": 1,
		"journal.enabled":   true,
		"database.type":     "sqlite",
		"database.dsn":      DefaultJournalDSN(),
		"language":          "en",
		"log.level":         "info",
	}
}

// GetConfigPath returns the user (or system-wide) cmpurge.yaml location.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "cmpurge")
		default:
			configDir = "/etc/cmpurge"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "cmpurge")
	}

	return filepath.Join(configDir, configName+".yaml"), nil
}

// DefaultJournalDSN places the SQLite journal next to the user config file,
// falling back to the working directory.
func DefaultJournalDSN() string {
	if p, err := GetConfigPath(false); err == nil {
		return filepath.Join(filepath.Dir(p), "journal.db")
	}
	return "./cmpurge-journal.db"
}

// IsNotFound reports whether err only means that no config file exists.
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// LoadConfig resolves T from defaults, the config file, the environment and
// the flags of cmd. When no config file was found the decoded value is
// returned together with a viper.ConfigFileNotFoundError so callers can
// persist a default file.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if !IsNotFound(err) {
			return c, err
		}
		notFound = err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := bindFlags(v, cmd); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, notFound
}

// bindFlags binds every known flag of cmd (local or inherited) to its key.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flagName, key := range FlagKeys {
		f := cmd.Flags().Lookup(flagName)
		if f == nil {
			f = cmd.InheritedFlags().Lookup(flagName)
		}
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// WriteConfigFile persists c as YAML at the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo persists c as YAML at path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
