package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/doguaydn/microservices-e-commerce/services/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TeesJSONIntoSink(t *testing.T) {
	var sink bytes.Buffer
	l, err := logger.New("production", "basket-service", &sink)
	require.NoError(t, err)

	l.Info("checkout completed")
	_ = l.Sync()

	line := strings.TrimSpace(sink.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "checkout completed", entry["msg"])
	assert.Equal(t, "basket-service", entry["service"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_WithoutSink(t *testing.T) {
	l, err := logger.New("development", "stock-service", nil)
	require.NoError(t, err)
	assert.NotNil(t, l)
}
