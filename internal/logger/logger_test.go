package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithErrorAddsErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	WithError(base, errors.New("connection refused")).Error("persist failed")

	out := buf.String()
	if !strings.Contains(out, `error="connection refused"`) {
		t.Errorf("log line missing error attr: %s", out)
	}
	if !strings.Contains(out, "persist failed") {
		t.Errorf("log line missing message: %s", out)
	}
}
