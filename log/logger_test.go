package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	logger := New("logtest")
	logger.Info("hidden")
	logger.Notice("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info message should be filtered at default level, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "[logtest]") {
		t.Errorf("expected notice with module tag, got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("value=%d", 7)
	if !strings.Contains(buf.String(), "value=7") {
		t.Errorf("Debugf: expected output after SetLevel(Debug), got %q", buf.String())
	}
}
