package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fuel-streams/streams/pkg/logger"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestSamplingHandlerAlwaysPassesErrors(t *testing.T) {
	rec := &recordingHandler{}
	h := logger.NewSamplingHandler(rec, 0.0)
	l := slog.New(h)

	l.Error("boom")
	l.Info("should be dropped")

	require.Len(t, rec.records, 1)
	require.Equal(t, "boom", rec.records[0].Message)
}

func TestInitInstallsGlobalLogger(t *testing.T) {
	l := logger.Init(logger.Config{Level: "INFO", Format: "JSON", Async: false})
	require.NotNil(t, l)
	require.Same(t, l, logger.L())
}
