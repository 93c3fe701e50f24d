package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"KEY", "VALUE"}, [][]string{
		{"id07", "7"},
		{"receivedIrData", "abc123"},
		{"short"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("RenderTable() has %d lines, want 4:\n%s", len(lines), out)
	}
	for _, want := range []string{"KEY", "id07", "receivedIrData", "abc123", "short"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTable() missing %q", want)
		}
	}

	// Values start in the same column on every row
	col := strings.Index(lines[2], "abc123")
	if got := strings.LastIndex(lines[1], "7"); got != col {
		t.Errorf("value column = %d, want %d", got, col)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintHeader("Gateway Discovery", "aio-bridge discover", Details{{Key: "Timeout", Value: "3s"}})
	p.PrintSuccess("1 gateway found", Details{{Key: "IP", Value: "10.0.0.5"}})
	p.PrintError("Command failed", errors.New("gateway rejected the command"), []string{"Check the IR code"})

	out := buf.String()
	for _, want := range []string{
		"GATEWAY DISCOVERY", "aio-bridge discover", "Timeout:", "3s",
		"SUCCESS", "10.0.0.5",
		"FAILED", "gateway rejected the command", "Troubleshooting:", "Check the IR code",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPrinter_MinimumWidth(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}).SetWidth(10)
	if p.Width() != MinTerminalWidth {
		t.Errorf("Width() = %d, want %d", p.Width(), MinTerminalWidth)
	}
}
