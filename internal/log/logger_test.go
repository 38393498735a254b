package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"hypotheek/internal/core"
)

func newJSONLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Format: "json", Component: ComponentApp, Output: buf})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, slog.LevelInfo).WithComponent(ComponentMortgage)

	logger.Info("hello", FieldMonths, 360)

	entry := decodeLine(t, &buf)
	if entry[FieldComponent] != ComponentMortgage {
		t.Fatalf("component = %v, want %q", entry[FieldComponent], ComponentMortgage)
	}
	if entry[FieldMonths] != float64(360) {
		t.Fatalf("months = %v", entry[FieldMonths])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newJSONLogger(&buf, slog.LevelInfo))

	p := core.MortgageParams{Amount: 1000, Rate: 2, Months: 12, StartDate: core.NewDate(2024, 1, 1)}
	sl.LogError(context.Background(), "calculation failed", errors.New("boom"), ComponentWorker, OpCalculate, NewFields().WithMortgage(p))

	entry := decodeLine(t, &buf)
	if entry[FieldError] != "boom" {
		t.Errorf("error = %v", entry[FieldError])
	}
	if entry[FieldOperation] != OpCalculate {
		t.Errorf("operation = %v", entry[FieldOperation])
	}
	if entry[FieldComponent] != ComponentWorker {
		t.Errorf("component = %v", entry[FieldComponent])
	}
	if entry[FieldStartDate] != "2024-01-01" {
		t.Errorf("start_date = %v", entry[FieldStartDate])
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", logger)
	}

	var buf bytes.Buffer
	own := newJSONLogger(&buf, slog.LevelInfo)
	ctx := context.WithValue(context.Background(), LoggerContextKey, own)
	if FromContext(ctx) != own {
		t.Fatal("expected logger stored in context")
	}
}
