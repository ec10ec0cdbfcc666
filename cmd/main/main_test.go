package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env     string
		enabled slog.Level
		muted   slog.Level
	}{
		{env: envLocal, enabled: slog.LevelDebug, muted: slog.LevelDebug - 1},
		{env: envDev, enabled: slog.LevelInfo, muted: slog.LevelDebug},
		{env: envProd, enabled: slog.LevelWarn, muted: slog.LevelInfo},
		{env: "staging", enabled: slog.LevelError, muted: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := setupLogger(tt.env)
			assert.True(t, log.Enabled(context.Background(), tt.enabled))
			assert.False(t, log.Enabled(context.Background(), tt.muted))
		})
	}
}
