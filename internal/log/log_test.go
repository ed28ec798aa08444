package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelDebug})

	logger.Info("ingestion started", "document", "kernels.txt")

	got := buf.String()
	if !strings.Contains(got, "ingestion started") {
		t.Errorf("output missing message: %s", got)
	}
	if !strings.Contains(got, "document=kernels.txt") {
		t.Errorf("output missing attribute: %s", got)
	}
}

func TestNewWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("chat answered", "chunks", 5)

	got := buf.String()
	if !strings.Contains(got, `"msg":"chat answered"`) {
		t.Errorf("output not JSON-encoded: %s", got)
	}
	if !strings.Contains(got, `"chunks":5`) {
		t.Errorf("attribute missing from JSON output: %s", got)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Debug("suppressed")
	logger.Info("visible")

	got := buf.String()
	if strings.Contains(got, "suppressed") {
		t.Error("debug record passed an info-level filter")
	}
	if !strings.Contains(got, "visible") {
		t.Error("info record was filtered out")
	}
}

func TestWith_ScopesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{})

	logger.With("component", "retriever").Info("search done")

	if got := buf.String(); !strings.Contains(got, "component=retriever") {
		t.Errorf("scoped attribute missing: %s", got)
	}
}

func TestNewNop_Discards(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop() returned nil")
	}
	logger.Error("goes nowhere")
}
