package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	ctx := context.Background()

	Success(ctx, rec, "Invoice created")
	Failure(ctx, rec, "Could not delete invoice", errors.New("404"))

	assert.Equal(t, []Notification{
		{Level: LevelSuccess, Message: "Invoice created"},
		{Level: LevelError, Message: "Could not delete invoice"},
	}, rec.All())
}

func TestLogging_FailureLogsCause(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &Recorder{}
	n := NewLogging(rec, zap.New(core))

	Failure(context.Background(), n, "Failed to fetch invoices", errors.New("connection refused"))

	require.Len(t, rec.All(), 1)
	assert.Equal(t, LevelError, rec.All()[0].Level)

	entries := logs.FilterMessage("Failed to fetch invoices").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "connection refused", entries[0].ContextMap()["error"])
}

func TestLogging_SuccessAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogging(nil, zap.New(core))

	Success(context.Background(), n, "Saved")

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.DebugLevel).Len())
}

func TestNotifierFunc(t *testing.T) {
	var got Notification
	f := NotifierFunc(func(_ context.Context, n Notification) { got = n })

	Success(context.Background(), f, "ok")
	assert.Equal(t, "ok", got.Message)
}
