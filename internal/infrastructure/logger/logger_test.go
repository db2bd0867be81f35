package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2-dashboard/internal/config"
)

func TestJSONLoggerCarriesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{ServiceName: "r2-dashboard", Environment: "test", LogFormat: "json", LogLevel: "debug"}, &buf)

	log.Debug().Str("bucket", "photos").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r2-dashboard", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "photos", entry["bucket"])
	assert.Equal(t, "hello", entry["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
}
