package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Content: 5 * time.Second})
	got := Current()
	if got.Content != 5*time.Second {
		t.Errorf("Content = %v, want 5s", got.Content)
	}
	if got.Ping != DefaultPing || got.Short != DefaultShort {
		t.Errorf("zero values should keep defaults, got %+v", got)
	}

	Reset()
	if Content() != DefaultContent {
		t.Errorf("Reset: Content = %v, want %v", Content(), DefaultContent)
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "generate exam")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if op := logs.All()[0].ContextMap()["operation"]; op != "generate exam" {
		t.Errorf("operation field = %v", op)
	}
}

func TestWithTimeout_NoLogOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := WithTimeout(context.Background(), time.Minute, zap.New(core), "op")
	cancel()
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
