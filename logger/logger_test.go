package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentLoggers(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PARTWATCH_ENVIRONMENT", "production")

	var buf bytes.Buffer
	InitWithWriter(&buf)

	ForFetcher("30657756").Info().Msg("fetched page")
	out := buf.String()
	assert.Contains(t, out, `"component":"fetcher"`)
	assert.Contains(t, out, `"identifier":"30657756"`)
	assert.Contains(t, out, `"message":"fetched page"`)

	buf.Reset()
	LogError("worker", errors.New("boom"), "cycle %d failed", 3)
	out = buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, "cycle 3 failed")
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", getLogLevel().String())

	t.Setenv("LOG_LEVEL", "not-a-level")
	assert.Equal(t, "info", getLogLevel().String())

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PARTWATCH_ENVIRONMENT", "production")
	assert.Equal(t, "info", getLogLevel().String())

	t.Setenv("PARTWATCH_ENVIRONMENT", "development")
	assert.Equal(t, "debug", getLogLevel().String())
}
