package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "evalsuite.log")

	log, closer := New(Options{Service: "evalsuite", Level: "debug", File: path, Console: &console})
	log.Info().Str("component", "test").Msg("hello")
	require.NoError(t, closer.Close())

	require.Contains(t, console.String(), `"service":"evalsuite"`)
	require.Contains(t, console.String(), `"message":"hello"`)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `"component":"test"`)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var console bytes.Buffer

	log, closer := New(Options{Level: "warn", Console: &console})
	defer closer.Close()

	log.Info().Msg("quiet")
	require.Empty(t, console.String())

	log.Warn().Msg("loud")
	require.Contains(t, console.String(), "loud")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}
