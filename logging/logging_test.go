package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLoggerRoutesLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLoggerTo(&out, &errOut, false)

	l.Debug("hidden")
	l.Info("window applied", Fields{"samples": 401, "component": "common_window"})
	l.Warn("bin did not converge", Fields{"index": 3})
	l.Error(errors.New("boom"), "inversion failed")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("debug line written at info level: %q", out.String())
	}
	if !strings.Contains(out.String(), "[INFO] window applied component=common_window samples=401") {
		t.Errorf("stdout = %q, want sorted fields", out.String())
	}
	if !strings.Contains(errOut.String(), "[WARN] bin did not converge index=3") {
		t.Errorf("stderr = %q, want warn line", errOut.String())
	}
	if !strings.Contains(errOut.String(), "[ERROR] inversion failed: boom") {
		t.Errorf("stderr = %q, want error line", errOut.String())
	}
	if strings.Contains(errOut.String(), ColorRed) {
		t.Errorf("colors written with colors disabled")
	}

	out.Reset()
	l.SetLevel(DebugLevel)
	l.Debug("shown")
	if !strings.Contains(out.String(), "[DEBUG] shown") {
		t.Errorf("stdout = %q, want debug line", out.String())
	}
}

func TestDefaultLoggerFields(t *testing.T) {
	var out bytes.Buffer
	base := NewDefaultLoggerTo(&out, &out, false)
	child := base.WithFields(Fields{"component": "transfer_solver"})

	ctx := ContextWithFields(context.Background(), Fields{"measurement": "pellet-a"})
	ctx = ContextWithFields(ctx, Fields{"run": 7})
	child.WithContext(ctx).Info("done", Fields{"bins": 12})

	line := out.String()
	for _, want := range []string{"bins=12", "component=transfer_solver", "measurement=pellet-a", "run=7"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	out.Reset()
	base.Info("plain")
	if strings.Contains(out.String(), "component=") {
		t.Errorf("parent logger picked up child fields: %q", out.String())
	}

	if got := FieldsFromContext(context.Background()); got != nil {
		t.Errorf("FieldsFromContext(empty) = %v, want nil", got)
	}
}

func TestZapLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	z := NewZapLogger(WithZapOutput(&buf), WithZapLevel(InfoLevel))
	l := z.WithFields(Fields{"component": "pipeline"})

	l.Debug("skipped")
	l.Info("measurement processed", Fields{"bins": 40, "measurement": "pellet-a"})
	l.Error(errors.New("thickness missing"), "measurement failed")
	if err := z.Sync(); err != nil {
		t.Logf("Sync() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if info["level"] != "info" || info["msg"] != "measurement processed" {
		t.Errorf("info entry = %v", info)
	}
	if info["component"] != "pipeline" || info["measurement"] != "pellet-a" || info["bins"] != float64(40) {
		t.Errorf("info fields = %v", info)
	}

	var failure map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if failure["level"] != "error" || failure["error"] != "thickness missing" {
		t.Errorf("error entry = %v", failure)
	}

	// the derived logger shares its parent's level
	buf.Reset()
	z.SetLevel(DebugLevel)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug entry missing after SetLevel: %q", buf.String())
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	var out bytes.Buffer
	SetGlobalLogger(NewDefaultLoggerTo(&out, &out, false))
	WithFields(Fields{"component": "test"}).Info("hello")
	if !strings.Contains(out.String(), "[INFO] hello component=test") {
		t.Errorf("global output = %q", out.String())
	}

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("SetGlobalLogger(nil) installed %T, want *NoOpLogger", GetGlobalLogger())
	}
}

func TestRegularFileIsNotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if isTerminalFd(f.Fd()) {
		t.Error("regular file reported as terminal")
	}
}
