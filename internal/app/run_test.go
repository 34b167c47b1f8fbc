package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mlc/internal/config"
	"mlc/internal/pipeline"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestRunReportsThreeBrokenLocalLinksAndWritesCSV is spec.md §8's second
// end-to-end scenario: a Markdown file with three broken local links and a
// CSV report configured should exit with errors and a 4-line CSV (header +
// one row per broken link).
func TestRunReportsThreeBrokenLocalLinksAndWritesCSV(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "ignore_me.md")
	writeFile(t, docPath, strings.Join([]string{
		"[one](broken_Link)",
		"[two](broken_Link)",
		"[three](broken_Link)",
		"",
	}, "\n"))

	csvPath := filepath.Join(dir, "report.csv")

	cfg := config.Defaults()
	cfg.Directory = dir
	cfg.Gitignore = false
	cfg.CSVPath = csvPath

	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.HasErrors() {
		t.Fatalf("HasErrors() = false, want true (three broken links)")
	}
	if report.Summary.Failed != 3 {
		t.Errorf("Failed = %d, want 3", report.Summary.Failed)
	}

	content, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("CSV has %d lines, want 4 (header + 3 rows): %q", len(lines), content)
	}
	if lines[0] != "source,line,column,target" {
		t.Errorf("header = %q, want source,line,column,target", lines[0])
	}
	for i, line := range lines[1:] {
		want := fmt.Sprintf("%s,%d,1,broken_Link", docPath, i+1)
		if line != want {
			t.Errorf("row %d = %q, want %q", i, line, want)
		}
	}
}

// TestRunIgnoresLinksMatchingIgnoreLinksGlob exercises spec.md §8 scenario 1:
// an ignore_links glob suppresses the link and the run exits clean.
func TestRunIgnoresLinksMatchingIgnoreLinksGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.md"), "[broken](./doc/broken-local-link.doc)\n")

	cfg := config.Defaults()
	cfg.Directory = dir
	cfg.Gitignore = false
	cfg.IgnoreLinks = []string{"./doc/broken-local-link.doc"}

	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("HasErrors() = true, want false (link is ignored)")
	}
	if report.Summary.Ignored != 1 {
		t.Errorf("Ignored = %d, want 1", report.Summary.Ignored)
	}
}

// TestRunDedupsRepeatedTargetAcrossFiles covers spec.md §8 invariant 2: two
// links resolving to the same Target produce one outcome, shared by both.
func TestRunDedupsRepeatedTargetAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "[missing](./missing.md)\n")
	writeFile(t, filepath.Join(dir, "b.md"), "[also missing](./missing.md)\n")

	cfg := config.Defaults()
	cfg.Directory = dir
	cfg.Gitignore = false

	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2 (one failed target attributed to both source links)", report.Summary.Failed)
	}

	var failedTargets int
	for _, res := range report.Results {
		if res.Outcome.Status == pipeline.StatusFailed {
			failedTargets++
			if len(res.Links) != 2 {
				t.Errorf("expected the shared target to list both source links, got %d", len(res.Links))
			}
		}
	}
	if failedTargets != 1 {
		t.Errorf("expected exactly one validated Target for the shared link, got %d", failedTargets)
	}
}

// TestRunRespectsMlcDisableComment covers spec.md §8 invariant 4: a line
// covered by mlc-disable must not surface its link at all.
func TestRunRespectsMlcDisableComment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.md"), strings.Join([]string{
		"<!-- mlc-disable -->",
		"[broken](./nope.md)",
		"<!-- mlc-enable -->",
		"", "",
	}, "\n"))

	cfg := config.Defaults()
	cfg.Directory = dir
	cfg.Gitignore = false

	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("HasErrors() = true, want false (link is inside an mlc-disable block)")
	}
	if len(report.Results) != 0 {
		t.Errorf("expected zero results, got %d", len(report.Results))
	}
}
