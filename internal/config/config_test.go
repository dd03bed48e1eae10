package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	v := viper.New()
	v.Set("certFile", "server.crt")
	v.Set("keyFile", "server.key")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, ":8443", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "server.crt", cfg.CertFile)
}

func TestLoadRejectsMissingCertFile(t *testing.T) {
	v := viper.New()
	v.Set("keyFile", "server.key")

	_, err := Load(v)
	require.Error(t, err)
}

func TestValidateRejectsNonPositiveHandshakeTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.CertFile = "a"
	cfg.KeyFile = "b"
	cfg.HandshakeTimeout = 0

	require.Error(t, cfg.Validate())
}
