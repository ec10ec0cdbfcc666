package sl_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	testLogger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{}))

	testLogger.Warn("write failed", sl.Err(assert.AnError))
	testLogger.Warn("no error", sl.Err(nil))

	loggedOutput := logBuf.String()

	assert.Contains(t, loggedOutput, assert.AnError.Error())
	assert.Contains(t, loggedOutput, "error=<nil>")
}

func TestOp(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&logBuf, nil))

	sl.Op(base, "task", "Tasks.Create").Info("saved")

	assert.Contains(t, logBuf.String(), "op=Tasks.Create")
	assert.Contains(t, logBuf.String(), "division=task")
}
