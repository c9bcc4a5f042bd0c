package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	require.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	formatter := logger.Formatter.(*logrus.TextFormatter)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLogger_WithContextLogger(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithField("skill", "db-migration")
	ctx := WithLogger(context.Background(), entry)

	retrieved := G(ctx)
	assert.Equal(t, "db-migration", retrieved.Data["skill"])
}

func TestGetLogger_FallsBackToGlobal(t *testing.T) {
	retrieved := G(context.Background())

	assert.NotNil(t, retrieved)
	assert.Equal(t, L.Logger, retrieved.Logger)
}

func TestLoggerFieldChaining(t *testing.T) {
	ctx := WithLogger(context.Background(), logrus.NewEntry(logrus.New()).WithField("request_id", "abc"))
	ctx = WithLogger(ctx, G(ctx).WithField("provider", "openai"))

	final := G(ctx)
	assert.Equal(t, "abc", final.Data["request_id"])
	assert.Equal(t, "openai", final.Data["provider"])
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	setFormat(logger, "json")

	ctx := WithLogger(context.Background(), logrus.NewEntry(logger))
	G(ctx).Info("scoring complete")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["logLevel"])
	assert.Equal(t, "scoring complete", entry["message"])
	assert.Contains(t, entry, "timestamp")
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("not-a-level"))

	require.NoError(t, SetLogLevel("info"))
}
