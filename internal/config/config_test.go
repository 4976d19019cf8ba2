package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/recall/internal/config"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimal = `
version: "1"
memory:
  index_path: /tmp/index.json
extraction:
  dir: /tmp/extractions
`

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(write(t, minimal))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Memory.Session != config.DefaultSession {
		t.Errorf("Session = %q, want %q", cfg.Memory.Session, config.DefaultSession)
	}
	if cfg.Extraction.Hours != config.DefaultHours {
		t.Errorf("Hours = %d, want %d", cfg.Extraction.Hours, config.DefaultHours)
	}
	if cfg.Extraction.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Extraction.Timeout, config.DefaultTimeout)
	}
	if cfg.Context.Window != config.DefaultWindow {
		t.Errorf("Window = %d, want %d", cfg.Context.Window, config.DefaultWindow)
	}
	if cfg.Context.PreviewLen != config.DefaultPreviewLen {
		t.Errorf("PreviewLen = %d, want %d", cfg.Context.PreviewLen, config.DefaultPreviewLen)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(write(t, `
version: "1"
memory:
  index_path: /data/index.json
  session: support
  min_significance: 0.4
extraction:
  dir: /data/extractions
  hours: 6
  schedule: "0 * * * *"
  timeout: 30s
context:
  window: 10
  preview_len: 120
status:
  addr: "127.0.0.1:7878"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Memory.Session != "support" {
		t.Errorf("Session = %q", cfg.Memory.Session)
	}
	if cfg.Extraction.Hours != 6 {
		t.Errorf("Hours = %d", cfg.Extraction.Hours)
	}
	if cfg.Extraction.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Extraction.Timeout)
	}
	if cfg.Context.Window != 10 || cfg.Context.PreviewLen != 120 {
		t.Errorf("Context = %+v", cfg.Context)
	}
	if cfg.Status.Addr != "127.0.0.1:7878" {
		t.Errorf("Status.Addr = %q", cfg.Status.Addr)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("RECALL_TEST_INDEX", "/env/index.json")

	cfg, err := config.Load(write(t, `
version: "1"
memory:
  index_path: ${RECALL_TEST_INDEX}
  session: ${RECALL_TEST_SESSION:-fallback}
extraction:
  dir: /tmp/extractions
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Memory.IndexPath != "/env/index.json" {
		t.Errorf("IndexPath = %q, want env value", cfg.Memory.IndexPath)
	}
	if cfg.Memory.Session != "fallback" {
		t.Errorf("Session = %q, want default fallback", cfg.Memory.Session)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()

	_, err := config.Load(write(t, `
version: "1"
memory:
  index_path: ${RECALL_NO_SUCH_VAR}
extraction:
  dir: /tmp/extractions
`))
	if err == nil {
		t.Fatal("Load should fail on unresolved variable")
	}
	if !strings.Contains(err.Error(), "RECALL_NO_SUCH_VAR") {
		t.Errorf("error does not name the variable: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load should fail on missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"missing version", func(c *config.Config) { c.Version = "" }, "version field is required"},
		{"bad version", func(c *config.Config) { c.Version = "2" }, "unsupported version"},
		{"missing index path", func(c *config.Config) { c.Memory.IndexPath = "" }, "index_path is required"},
		{"missing extraction dir", func(c *config.Config) { c.Extraction.Dir = "" }, "extraction.dir is required"},
		{"bad schedule", func(c *config.Config) { c.Extraction.Schedule = "not a cron" }, "extraction.schedule"},
		{"significance out of range", func(c *config.Config) { c.Memory.MinSignificance = 1.5 }, "out of range"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{
				Version: "1",
				Memory:  config.MemoryConfig{IndexPath: "/tmp/index.json"},
				Extraction: config.ExtractionConfig{
					Dir:      "/tmp/extractions",
					Schedule: "*/5 * * * *",
				},
			}
			tc.mutate(cfg)

			err := config.Validate(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	var cfg config.Config
	kw := cfg.Keywords()
	if len(kw.Technical) == 0 || len(kw.Importance) == 0 || len(kw.Actionable) == 0 {
		t.Fatal("empty scoring config should fall back to built-in keywords")
	}

	cfg.Scoring.Technical = []string{"kubernetes"}
	kw = cfg.Keywords()
	if len(kw.Technical) != 1 || kw.Technical[0] != "kubernetes" {
		t.Errorf("Technical = %v, want override", kw.Technical)
	}
	if len(kw.Importance) == 0 {
		t.Error("Importance should keep defaults when not overridden")
	}
}
