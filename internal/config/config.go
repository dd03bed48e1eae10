// Package config provides the configuration structure for the tls13lab
// server binary.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the server's runtime configuration, populated by viper from CLI
// flags and environment variables (TLS13LAB_ prefix); no config file is
// read. It mirrors the mapstructure-tagged config struct
// convention this repo's pack-mate keploy-keploy uses (config/config.go).
type Config struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	CertFile         string        `mapstructure:"certFile" yaml:"certFile"`
	KeyFile          string        `mapstructure:"keyFile" yaml:"keyFile"`
	LogLevel         string        `mapstructure:"logLevel" yaml:"logLevel"`
	HandshakeTimeout time.Duration `mapstructure:"handshakeTimeout" yaml:"handshakeTimeout"`
}

// Defaults returns a Config with the server's default values, applied
// before flag/env overrides.
func Defaults() Config {
	return Config{
		Addr:             ":8443",
		LogLevel:         "info",
		HandshakeTimeout: 10 * time.Second,
	}
}

// Load builds a Config from a viper instance already populated by cobra's
// flag bindings, validating the fields the handshake driver actually needs.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the fields required to start the server are present.
func (c Config) Validate() error {
	if c.CertFile == "" {
		return fmt.Errorf("config: certFile is required")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("config: keyFile is required")
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("config: handshakeTimeout must be positive")
	}
	return nil
}
