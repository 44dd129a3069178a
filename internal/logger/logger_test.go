package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("parsed", "levels", 3)

	output := buf.String()
	if !strings.Contains(output, `"msg":"parsed"`) {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"levels":3`) {
		t.Fatalf("expected levels attr in JSON output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Debug("hidden too")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}

	log.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn message, got: %s", buf.String())
	}
}

func TestConsoleLine(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Console(&buf, slog.LevelDebug, false)
	log.Debug("read header", "path", "a b.ktx", "width", 16)

	output := buf.String()
	for _, want := range []string{" DBG read header", `path="a b.ktx"`, "width=16"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got: %s", want, output)
		}
	}
	if strings.Contains(output, "\033[") {
		t.Fatalf("colors emitted with Color=false: %q", output)
	}
}

func TestConsoleColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	Console(&buf, slog.LevelInfo, true).Error("boom")
	if !strings.Contains(buf.String(), colorRed+"ERR"+colorReset) {
		t.Fatalf("expected colored level, got: %q", buf.String())
	}
}

func TestConsoleGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Console(&buf, slog.LevelInfo, false).
		With("component", "server").
		WithGroup("http").
		With("method", "GET").
		WithGroup("req")
	log.Info("request", "status", 200)

	output := buf.String()
	for _, want := range []string{"component=server", "http.method=GET", "http.req.status=200"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got: %s", want, output)
		}
	}
	if strings.Contains(output, "http.http.") {
		t.Fatalf("group prefix applied twice: %s", output)
	}
}

func TestConsoleHandlerEmptyGroup(t *testing.T) {
	t.Parallel()
	h := NewConsoleHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("WithGroup(\"\") should return the same handler")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug enabled with default options")
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", FormatConsole, FormatText, FormatJSON, "JSON"} {
		var buf bytes.Buffer
		log, err := ForFormat(&buf, format, slog.LevelInfo)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", format, err)
		}
		log.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Fatalf("ForFormat(%q) wrote %q", format, buf.String())
		}
	}

	if _, err := ForFormat(&bytes.Buffer{}, "xml", slog.LevelInfo); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))

	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseLevel(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"simple", false},
		{"RGBA8", false},
		{"has space", true},
		{"k=v", true},
		{`"`, true},
		{"", true},
	}

	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.want {
			t.Errorf("needsQuoting(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	// must not panic
	Discard().With("k", "v").Error("dropped")
}
