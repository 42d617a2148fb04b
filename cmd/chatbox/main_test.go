package main

import (
	"bytes"
	"strings"
	"testing"

	"chatbox/pkg/config"
)

func TestApplyFlags(t *testing.T) {
	defer func() { flagHost, flagPort, flagState = "", 0, "" }()

	cfg := config.Default()
	applyFlags(&cfg)
	if cfg.Client.Host != config.DefaultHost || cfg.Client.Port != config.DefaultPort {
		t.Errorf("Expected defaults without flags, got %s:%d", cfg.Client.Host, cfg.Client.Port)
	}

	flagHost, flagPort, flagState = "chat.example", 9000, "/tmp/state.json"
	applyFlags(&cfg)
	if cfg.Client.Host != "chat.example" || cfg.Client.Port != 9000 {
		t.Errorf("Expected flag overrides, got %s:%d", cfg.Client.Host, cfg.Client.Port)
	}
	if cfg.Client.StateFile != "/tmp/state.json" {
		t.Errorf("Expected state file override, got %q", cfg.Client.StateFile)
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)
	out := buf.String()
	for _, want := range []string{"chatbox", "commit:", "platform:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected version output to contain %q, got:\n%s", want, out)
		}
	}
}
