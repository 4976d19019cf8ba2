package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmd_CommandsWired(t *testing.T) {
	root := rootCmd()

	want := []string{
		"init", "session", "log", "query", "recent", "topic", "stats",
		"extract", "analyze", "context", "daemon", "serve", "setup",
		"service", "version",
	}
	have := make(map[string]bool)
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestLogCmd_CreateFlagOptIn(t *testing.T) {
	flag := logCmd().Flags().Lookup("create")
	if flag == nil {
		t.Fatal("log command missing --create flag")
	}
	if flag.DefValue != "false" {
		t.Errorf("--create default = %q, want false; sessions must not be created implicitly", flag.DefValue)
	}
}

func TestResolveConfigPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "recall", "recall.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("version: \"1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveConfigPath()
	if err != nil {
		t.Fatalf("resolveConfigPath: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestResolveConfigPath_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := resolveConfigPath()
	if err == nil {
		t.Fatal("expected error when no config exists")
	}
	if !strings.Contains(err.Error(), "recall setup") {
		t.Errorf("error should point at setup: %v", err)
	}
}
