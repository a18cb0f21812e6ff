package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/polyglot-agents/webkernel/observability"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  string
	}{
		{observability.LevelVerbose, "DEBUG"},
		{observability.LevelInfo, "INFO"},
		{observability.LevelWarning, "WARN"},
		{observability.LevelError, "ERROR"},
		{observability.Level(2), "TRACE"},
		{observability.Level(22), "FATAL"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelSlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug},
		{observability.LevelInfo, slog.LevelInfo},
		{observability.LevelWarning, slog.LevelWarn},
		{observability.LevelError, slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger)

	obs.OnEvent(context.Background(), observability.Event{
		Type:      "kernel.run.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "test",
		Data:      map[string]any{"tools": 3},
	})

	out := buf.String()
	for _, want := range []string{"kernel.run.start", "source=test", "tools=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestSlogObserverToolUpdate(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger)

	obs.OnToolUpdate(context.Background(), observability.ToolUpdate{
		Name:     "data_transform",
		Language: "go",
		Status:   observability.StatusRunning,
	})
	obs.OnToolUpdate(context.Background(), observability.ToolUpdate{
		Name:     "data_transform",
		Language: "go",
		Status:   observability.StatusError,
	})

	out := buf.String()
	if !strings.Contains(out, "status=running") {
		t.Errorf("log output missing running status: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("error status not logged at warn level: %s", out)
	}
}

type countingObserver struct {
	mu      sync.Mutex
	events  int
	updates int
}

func (o *countingObserver) OnEvent(context.Context, observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events++
}

func (o *countingObserver) OnToolUpdate(context.Context, observability.ToolUpdate) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates++
}

func TestMultiObserver(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	multi := observability.NewMultiObserver(a, nil, b)

	multi.OnEvent(context.Background(), observability.Event{Type: "kernel.response"})
	multi.OnToolUpdate(context.Background(), observability.ToolUpdate{Name: "x"})

	for i, obs := range []*countingObserver{a, b} {
		if obs.events != 1 || obs.updates != 1 {
			t.Errorf("observer %d saw events=%d updates=%d, want 1/1", i, obs.events, obs.updates)
		}
	}
}

func TestObserverRegistry(t *testing.T) {
	if _, err := observability.GetObserver("noop"); err != nil {
		t.Errorf("GetObserver(noop) failed: %v", err)
	}
	if _, err := observability.GetObserver("slog"); err != nil {
		t.Errorf("GetObserver(slog) failed: %v", err)
	}
	if _, err := observability.GetObserver("nope"); err == nil {
		t.Error("GetObserver(nope) succeeded, want error")
	}

	custom := &countingObserver{}
	observability.RegisterObserver("counting", custom)
	got, err := observability.GetObserver("counting")
	if err != nil {
		t.Fatalf("GetObserver(counting) failed: %v", err)
	}
	if got != custom {
		t.Error("GetObserver returned a different observer than registered")
	}
}
