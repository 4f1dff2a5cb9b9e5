package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"linkflow/internal/services"
)

func TestConsoleHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("step complete",
		slog.String(FieldComponent, "pipeline"),
		slog.String(FieldStep, "1-create-linkpage"),
		slog.Int("status", 201),
	)

	out := buf.String()
	if !strings.Contains(out, "[pipeline]") {
		t.Fatalf("missing component tag: %q", out)
	}
	if !strings.Contains(out, "step complete") {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "- step: 1-create-linkpage") {
		t.Fatalf("missing step field: %q", out)
	}
	if !strings.Contains(out, "- status: 201") {
		t.Fatalf("missing status field: %q", out)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be suppressed: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record should be emitted: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithStep(ctx, "2-create-qr")
	WithContext(ctx, logger).Info("working")

	out := buf.String()
	if !strings.Contains(out, "run-42") || !strings.Contains(out, "2-create-qr") {
		t.Fatalf("context fields missing: %q", out)
	}
}
