package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunSettingsDatabaseError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "settings.db")

	err := run(config{settingsDB: dbPath, httpAddr: "127.0.0.1:0"}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open settings database")
}

func TestRunHTTPListenError(t *testing.T) {
	err := run(config{httpAddr: "127.0.0.1:-1", endpoint: "/mcp"}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"de", "en"}, splitList(" de, ,en "))
	assert.Nil(t, splitList(""))
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		l, err := newLogger(debug)
		require.NoError(t, err)
		assert.Equal(t, debug, l.Core().Enabled(zap.DebugLevel))
	}
}
