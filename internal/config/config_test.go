package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sillsdev/liftbridge/internal/merge"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "liftbridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
merge:
  policy: keep-new
  trust_mod_times: true
  max_text_length: 500
  analysis_locale: fr
export:
  producer: "dictionary team"
  compression: gzip
  media_root: /data/media
log:
  level: debug
  format: json
import_log:
  path: /var/lib/liftbridge/imports.db
progress:
  addr: "127.0.0.1:9300"
`

func TestLoadFromYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Merge.Policy != "keep-new" || !cfg.Merge.TrustModTimes || cfg.Merge.MaxTextLength != 500 {
		t.Errorf("merge = %+v", cfg.Merge)
	}
	if cfg.Export.Producer != "dictionary team" || cfg.Export.Compression != "gzip" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if !cfg.Export.CopyMedia {
		t.Error("copy_media should default to true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.ImportLog.Path != "/var/lib/liftbridge/imports.db" || cfg.Progress.Addr != "127.0.0.1:9300" {
		t.Errorf("import log = %q, progress = %q", cfg.ImportLog.Path, cfg.Progress.Addr)
	}

	o := cfg.MergeOptions()
	if o.Policy != merge.KeepNew || !o.TrustModTimes || o.MaxTextLength != 500 || o.AnalysisLocale != "fr" {
		t.Errorf("merge options = %+v", o)
	}
	if x := cfg.ExportOptions(); x.MediaRoot != "/data/media" || x.Producer != "dictionary team" {
		t.Errorf("export options = %+v", x)
	}
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIFTBRIDGE_CONFIG", "")
	t.Setenv("LIFTBRIDGE_MERGE_POLICY", "keep-both")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Merge.Policy != "keep-both" {
		t.Errorf("policy = %q, want keep-both", cfg.Merge.Policy)
	}
	if cfg.Export.Compression != "xz" || cfg.Export.Producer != "liftbridge" {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if !cfg.Merge.CaseInsensitiveLabels || cfg.Merge.AnalysisLocale != "en" {
		t.Errorf("merge defaults = %+v", cfg.Merge)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("LIFTBRIDGE_EXPORT_COMPRESSION", "xz")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Compression != "xz" {
		t.Errorf("compression = %q, want xz", cfg.Export.Compression)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"valid", validYAML, false},
		{"bad policy", "merge:\n  policy: keep-some\n", true},
		{"bad compression", "export:\n  compression: zip\n", true},
		{"negative length", "merge:\n  max_text_length: -1\n", true},
		{"bad level", "log:\n  level: loud\n", true},
		{"bad format", "log:\n  format: xml\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeYAML(t, t.TempDir(), tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
