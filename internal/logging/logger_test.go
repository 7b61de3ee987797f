package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func captureAt(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	SetLoggerForTest(zerolog.New(&buf).With().Timestamp().Logger().Level(lvl))
	return &buf
}

func TestInfo_KeyValuePairs(t *testing.T) {
	buf := captureAt(t, "info")

	Info("render finished", "path", "out.pdf", "exit_code", 0)

	out := buf.String()
	if !strings.Contains(out, "render finished") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, `"path":"out.pdf"`) || !strings.Contains(out, `"exit_code":0`) {
		t.Errorf("expected key/value pairs in output, got %q", out)
	}
}

func TestWarn_DroppedWhenBelowLevel(t *testing.T) {
	buf := captureAt(t, "error")

	Warn("renderer stderr", "output", "warning text")

	if buf.Len() != 0 {
		t.Errorf("expected no output below error level, got %q", buf.String())
	}
}

func TestSetLogLevel_RaisesVerbosity(t *testing.T) {
	buf := captureAt(t, "info")

	Debug("hidden")
	SetLogLevel("debug")
	Debug("visible now")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged before SetLogLevel: %q", out)
	}
	if !strings.Contains(out, "visible now") {
		t.Errorf("expected debug line after SetLogLevel, got %q", out)
	}
}

func TestEmit_OddPairsIgnoreTrailingKey(t *testing.T) {
	buf := captureAt(t, "info")

	Error("boom", "code", 7, "dangling")

	out := buf.String()
	if !strings.Contains(out, `"code":7`) {
		t.Errorf("expected paired key in output, got %q", out)
	}
	if strings.Contains(out, "dangling") {
		t.Errorf("trailing key without value must be dropped, got %q", out)
	}
}

func TestInit_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "websnatch.log")
	Init(file, 1, 1, 1, false, "info")
	defer Init("", 0, 0, 0, false, "info")

	Info("file sink check", "k", "v")

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "file sink check") {
		t.Errorf("expected log line in file, got %q", string(data))
	}
}
