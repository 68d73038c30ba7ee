package logutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskdeck.log")

	log, closer, err := New("info", path)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("k", "v").Msg("shown")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"shown"`)
	assert.Contains(t, string(data), `"k":"v"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.log")

	for _, msg := range []string{"first", "second"} {
		log, closer, err := New("debug", path)
		require.NoError(t, err)
		log.Info().Msg(msg)
		closer()
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestNew_level(t *testing.T) {
	log, closer, err := New("warn", "")
	require.NoError(t, err)
	defer closer()
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	_, _, err = New("loud", "")
	assert.Error(t, err)
}
