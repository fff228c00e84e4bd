package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("tick") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("tick") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("tick") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug line missing after SetLogLevel: %q", buf.String())
	}
}

func TestStageLogsAtDebug(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		wantLog bool
	}{
		{"hidden at info", log.InfoLevel, false},
		{"shown at debug", log.DebugLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := withLogger(context.Background(), newLogger(&buf, tt.level))
			st := startStage(ctx, "simulate")
			time.Sleep(2 * time.Millisecond)
			st.end("ticks", 312, "converged", true)

			out := buf.String()
			if got := strings.Contains(out, "simulate done"); got != tt.wantLog {
				t.Fatalf("stage output = %q, want logged = %v", out, tt.wantLog)
			}
			if tt.wantLog && (!strings.Contains(out, "elapsed=") || !strings.Contains(out, "ticks=312")) {
				t.Errorf("stage output = %q, want elapsed and result fields", out)
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	if contextLogger(context.Background()) != log.Default() {
		t.Fatal("contextLogger should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if got := contextLogger(ctx); got != custom {
		t.Error("contextLogger should return the attached logger")
	}
}
