package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sillsdev/liftbridge/internal/config"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// testGlobals returns globals with a default configuration and an import
// log in a temporary directory.
func testGlobals(t *testing.T) *Globals {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LIFTBRIDGE_CONFIG", "")
	t.Setenv("LIFTBRIDGE_IMPORT_LOG", filepath.Join(t.TempDir(), "imports.db"))
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return &Globals{cfg: cfg}
}

// captureStdout redirects report output for the duration of the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func entry(id, form, gloss string) string {
	return `<entry id="` + id + `">
  <lexical-unit><form lang="seh"><text>` + form + `</text></form></lexical-unit>
  <sense id="` + id + `-s1"><gloss lang="en"><text>` + gloss + `</text></gloss></sense>
</entry>`
}

func liftFile(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<lift producer="test" version="0.13">` + strings.Join(entries, "\n") + `</lift>`
}

func TestCheckCmd(t *testing.T) {
	g := testGlobals(t)
	out := captureStdout(t)
	dir := t.TempDir()
	file := createTestFile(t, dir, "dict.lift", liftFile(entry("mbuzi", "mbuzi", "goat")))

	cmd := &CheckCmd{File: file, Format: "text"}
	if err := cmd.Run(context.Background(), g); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out.String(), "1 added") {
		t.Errorf("output = %q, want one entry added", out.String())
	}
}

func TestCheckStrictFailsOnProblems(t *testing.T) {
	g := testGlobals(t)
	captureStdout(t)
	file := createTestFile(t, t.TempDir(), "dict.lift", liftFile(`<entry id="a">
  <lexical-unit><form lang="seh"><text>a</text></form></lexical-unit>
  <relation type="Synonyms" ref="missing"/>
</entry>`))

	cmd := &CheckCmd{File: file, Format: "yaml", Strict: true}
	if err := cmd.Run(context.Background(), g); err == nil {
		t.Fatal("expected strict check to fail on an unresolved relation")
	}
}

func TestMergeCmdWritesBundleAndLog(t *testing.T) {
	g := testGlobals(t)
	out := captureStdout(t)
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.lift", liftFile(entry("mbuzi", "mbuzi", "goat")))
	incoming := createTestFile(t, dir, "new.lift", liftFile(entry("mbuzi", "mbuzi", "goat"), entry("nkhuku", "nkhuku", "chicken")))
	bundleDir := filepath.Join(dir, "merged")

	cmd := &MergeCmd{Incoming: incoming, Base: base, Policy: "keep-new", Out: bundleDir, Pack: "gzip", Format: "json"}
	if err := cmd.Run(context.Background(), g); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(out.String(), `"policy": "keep-new"`) {
		t.Errorf("report = %s", out.String())
	}

	data, err := os.ReadFile(filepath.Join(bundleDir, "merged.lift"))
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	if got := strings.Count(string(data), "<entry "); got != 2 {
		t.Errorf("entries = %d, want 2", got)
	}
	if _, err := os.Stat(bundleDir + ".tar.gz"); err != nil {
		t.Errorf("packed bundle: %v", err)
	}

	out.Reset()
	list := &ReportsListCmd{Limit: 5, Format: "text"}
	if err := list.Run(context.Background(), g); err != nil {
		t.Fatalf("reports list: %v", err)
	}
	if !strings.Contains(out.String(), "new.lift") {
		t.Errorf("reports list = %q", out.String())
	}

	out.Reset()
	show := &ReportsShowCmd{ID: 1, Format: "yaml"}
	if err := show.Run(context.Background(), g); err != nil {
		t.Fatalf("reports show: %v", err)
	}
	if !strings.Contains(out.String(), "entries_added: 1") {
		t.Errorf("reports show = %q", out.String())
	}
}

func TestMergeCmdRejectsUnknownPolicy(t *testing.T) {
	g := testGlobals(t)
	file := createTestFile(t, t.TempDir(), "a.lift", liftFile(entry("a", "a", "a")))
	cmd := &MergeCmd{Incoming: file, Policy: "keep-some", Out: t.TempDir()}
	if err := cmd.Run(context.Background(), g); err == nil {
		t.Fatal("expected an error for an unknown policy")
	}
}

func TestExportCmdUsesCompanionRanges(t *testing.T) {
	g := testGlobals(t)
	dir := t.TempDir()
	file := createTestFile(t, dir, "dict.lift", liftFile(entry("a", "a", "a")))
	createTestFile(t, dir, "dict.lift-ranges", `<lift-ranges>
  <range id="usage-type">
    <range-element id="archaic"><label><form lang="en"><text>archaic</text></form></label></range-element>
  </range>
</lift-ranges>`)

	out := filepath.Join(dir, "out")
	cmd := &ExportCmd{File: file, Out: out, Name: "canon"}
	if err := cmd.Run(context.Background(), g); err != nil {
		t.Fatalf("export: %v", err)
	}
	ranges, err := os.ReadFile(filepath.Join(out, "canon.lift-ranges"))
	if err != nil {
		t.Fatalf("read ranges: %v", err)
	}
	if !strings.Contains(string(ranges), "archaic") {
		t.Errorf("ranges = %s", ranges)
	}
}

func TestFeatureCmdWithoutRanges(t *testing.T) {
	g := testGlobals(t)
	out := captureStdout(t)
	cmd := &FeatureCmd{Expr: "[number:sg]"}
	if err := cmd.Run(context.Background(), g); err != nil {
		t.Fatalf("feature: %v", err)
	}
	if !strings.Contains(out.String(), "number") {
		t.Errorf("output = %q", out.String())
	}
}

func TestReportsWithoutLog(t *testing.T) {
	g := testGlobals(t)
	g.cfg.ImportLog.Path = ""
	if err := (&ReportsListCmd{Format: "text"}).Run(context.Background(), g); err == nil {
		t.Fatal("expected an error without an import log")
	}
}

func TestVersionVerbose(t *testing.T) {
	out := captureStdout(t)
	if err := (&VersionCmd{Verbose: true}).Run(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "liftbridge version "+version) {
		t.Errorf("version = %q", out.String())
	}
	if !strings.Contains(out.String(), "sqlite driver: ") {
		t.Errorf("version output lacks the driver line: %q", out.String())
	}
}
