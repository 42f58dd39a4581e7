package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(env(nil))
	require.NoError(t, err)
	assert.Contains(t, cfg.DBPath, ".kandang")
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Error(t, cfg.RequireRemote())
}

func TestLoadFromEnv(t *testing.T) {
	cfg, err := Load(env(map[string]string{
		EnvDB:       "/tmp/k.db",
		EnvAPIURL:   " https://script.example/exec ",
		EnvTimeout:  "5s",
		EnvAddr:     ":9000",
		EnvLogLevel: "DEBUG",
	}))
	require.NoError(t, err)
	assert.Equal(t, Config{
		DBPath:   "/tmp/k.db",
		APIURL:   "https://script.example/exec",
		Timeout:  5 * time.Second,
		Addr:     ":9000",
		LogLevel: slog.LevelDebug,
	}, cfg)
	assert.NoError(t, cfg.RequireRemote())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"timeout garbage":  {EnvTimeout: "soon"},
		"timeout negative": {EnvTimeout: "-1s"},
		"log level":        {EnvLogLevel: "loud"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(env(vars))
			assert.Error(t, err)
		})
	}
}
