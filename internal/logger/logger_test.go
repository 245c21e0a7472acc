package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.log")
	cfg := &config.Config{ServiceName: "kiul-test", Environment: config.EnvProduction, LogLevel: "warn", LogFile: path}

	log := New(cfg)
	log.Info().Msg("dropped")
	log.Warn().Str("route", "/api/email").Msg("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"kept"`)
	assert.Contains(t, string(data), `"service":"kiul-test"`)
	assert.NotContains(t, string(data), "dropped")
}
