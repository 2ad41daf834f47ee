package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&info, &errs, false)

	logger.Debug("hidden")
	logger.Info("frames analysed", Fields{"frames": 40, "component": "stft"})
	logger.Warn("silent frames", Fields{"count": 3})

	assert.NotContains(t, info.String(), "hidden")
	assert.Contains(t, info.String(), "[INFO] frames analysed component=stft frames=40")
	assert.Contains(t, errs.String(), "[WARN] silent frames count=3")
}

func TestDefaultLoggerWithFieldsAndContext(t *testing.T) {
	var info bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&info, &info, false)
	logger.SetLevel(DebugLevel)

	ctx := ContextWithFields(context.Background(), Fields{"request_id": "abc"})
	logger.WithFields(Fields{"component": "extractor"}).WithContext(ctx).Debug("start")

	assert.Contains(t, info.String(), "component=extractor")
	assert.Contains(t, info.String(), "request_id=abc")
}

func TestDefaultLoggerFatalExits(t *testing.T) {
	var errs bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&errs, &errs, false)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(errors.New("boom"), "cannot continue")

	assert.Equal(t, 1, code)
	assert.Contains(t, errs.String(), "[FATAL] cannot continue: boom")
}

func TestLogrusLogger(t *testing.T) {
	var out bytes.Buffer
	base := logrus.New()
	base.SetOutput(&out)
	base.SetFormatter(&logrus.JSONFormatter{})

	logger := NewLogrusLogger(base)
	logger.SetLevel(DebugLevel)
	logger.WithFields(Fields{"component": "segmenter"}).Debug("emitted", Fields{"segments": 2})
	logger.Error(errors.New("bad table"), "template load failed")

	text := out.String()
	assert.Contains(t, text, `"component":"segmenter"`)
	assert.Contains(t, text, `"segments":2`)
	assert.Contains(t, text, `"error":"bad table"`)
	assert.Equal(t, logrus.DebugLevel, base.GetLevel())
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
