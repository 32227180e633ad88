package main

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()

	// Each falls back to a placeholder when neither ldflags nor build
	// information provide a value.
	for name, got := range map[string]string{
		"version": getVersion(),
		"commit":  getCommit(),
		"date":    getDate(),
	} {
		if got == "" {
			t.Errorf("%s is empty", name)
		}
	}
	if len(getCommit()) > 7 && getCommit() != "unknown" {
		t.Errorf("commit should be shortened: %q", getCommit())
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	if cmd.Use != "version" {
		t.Errorf("expected Use to be 'version', got %q", cmd.Use)
	}

	stdout, _, err := executeCmd(t, nil, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"harsanitizer version", "commit:", "built:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got %q", want, stdout)
		}
	}
}
