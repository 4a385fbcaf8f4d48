package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/ajroetker/go-ico/internal/oops"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	require.NoError(t, Setup("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	err := Setup("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestWriterNotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()

	assert.Same(t, f, Writer(f))
}

func TestErrorStack(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Error().Stack().Err(oops.New(errors.New("boom"), "extracting")).Msg("failed")

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "extracting: boom", fields[zerolog.ErrorFieldName])

	frames, ok := fields[zerolog.ErrorStackFieldName].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, frames)
	assert.Contains(t, frames[0].(map[string]interface{})["function"], "TestErrorStack")
}
