package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format, OutputPaths: []string{"stdout"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/sub/out.log"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"Warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, zapcore.InfoLevel, got)
}

func TestZapLogger_WritesLevelsAndFields(t *testing.T) {
	l, logs := newObservedLogger()

	l.Debug("bucketed", Int("quarters", 26))
	l.Info("query served", String("group", "Selection A"), Float64("mean", 4.3))
	l.Warn("cache unavailable", Err(errors.New("dial tcp: refused")))
	l.Error("load failed", Bool("fatal", true))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(26), entries[0].ContextMap()["quarters"])
	assert.Equal(t, "Selection A", entries[1].ContextMap()["group"])
	assert.Equal(t, "dial tcp: refused", entries[2].ContextMap()["error"])
	assert.Equal(t, true, entries[3].ContextMap()["fatal"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger()

	child := l.Named("analytics").With(String(FieldComponent, "engine"))
	child.Info("hello")

	entry := logs.All()[0]
	assert.Equal(t, "analytics", entry.LoggerName)
	assert.Equal(t, "engine", entry.ContextMap()[FieldComponent])
}

func TestZapLogger_WithContext_AddsRequestID(t *testing.T) {
	l, logs := newObservedLogger()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("tagged")
	l.WithContext(context.Background()).Info("untagged")

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, "req-42", all[0].ContextMap()[FieldRequestID])
	_, has := all[1].ContextMap()[FieldRequestID]
	assert.False(t, has)
}

func TestRequestIDFromContext_Nil(t *testing.T) {
	//nolint:staticcheck
	assert.Equal(t, "", RequestIDFromContext(nil))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
	})
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("n"))
	assert.Equal(t, l, l.WithContext(context.Background()))
	assert.NoError(t, l.Sync())
}

func TestDefault_SetAndGet(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, _ := newObservedLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestErr_NilError(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

//Personal.AI order the ending
