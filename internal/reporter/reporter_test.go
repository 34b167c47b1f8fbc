package reporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mlc/internal/pipeline"
)

func sampleResults() []pipeline.FinalResult {
	return []pipeline.FinalResult{
		{
			Target:  pipeline.Target{Normalized: "https://example.com", Kind: pipeline.LinkHTTP},
			Outcome: pipeline.OutcomeOK(),
			Links: []pipeline.MarkupLink{
				{Source: "b.md", Target: "https://example.com", Line: 2, Column: 3},
			},
		},
		{
			Target:  pipeline.Target{Normalized: "/missing.md", Kind: pipeline.LinkFileSystem},
			Outcome: pipeline.OutcomeFailed("Target path not found."),
			Links: []pipeline.MarkupLink{
				{Source: "a.md", Target: "/missing.md", Line: 1, Column: 1},
			},
		},
	}
}

func TestReportOrdersBySourceThenPosition(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true, true)
	summary := r.Report(sampleResults())

	if summary.OK != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 OK and 1 Failed", summary)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], "[Failed] a.md") {
		t.Errorf("first line = %q, want a.md first (sorted before b.md)", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[OK] b.md") {
		t.Errorf("second line = %q, want b.md second", lines[1])
	}
}

func TestReportIncludesOutcomeMessage(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true, true)
	r.Report(sampleResults())

	if !strings.Contains(buf.String(), "Target path not found.") {
		t.Errorf("output missing failure message: %s", buf.String())
	}
}

func TestWriteCSVProducesHeaderAndFailedRowsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")

	if err := WriteCSV(path, sampleResults(), false); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(content)

	if !strings.HasPrefix(text, "source,line,column,target\n") {
		t.Errorf("missing expected header: %s", text)
	}
	if !strings.Contains(text, "a.md,1,1,/missing.md\n") {
		t.Errorf("missing expected failed row: %s", text)
	}
	if strings.Contains(text, "b.md") {
		t.Errorf("OK link should not produce a CSV row: %s", text)
	}
}

func TestWriteCSVIncludesWarningsWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")

	results := []pipeline.FinalResult{
		{
			Target:  pipeline.Target{Normalized: "https://example.com/redirected", Kind: pipeline.LinkHTTP},
			Outcome: pipeline.OutcomeWarning("Request was redirected to https://example.com/final"),
			Links: []pipeline.MarkupLink{
				{Source: "c.md", Target: "https://example.com/redirected", Line: 4, Column: 5},
			},
		},
	}

	if err := WriteCSV(path, results, true); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(content)

	if !strings.HasPrefix(text, "source,line,column,target,severity\n") {
		t.Errorf("missing expected header: %s", text)
	}
	if !strings.Contains(text, "c.md,4,5,https://example.com/redirected,Warning\n") {
		t.Errorf("missing expected warning row: %s", text)
	}
}

func TestReportBrokenPrintsReferenceLabel(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true, true)
	r.ReportBroken(pipeline.BrokenExtractedLink{Source: "a.md", Reference: "missing-ref", Line: 5, Column: 1})

	out := buf.String()
	if !strings.Contains(out, "[Warning] a.md(:5:1)") {
		t.Errorf("missing position prefix: %s", out)
	}
	if !strings.Contains(out, "missing-ref") {
		t.Errorf("missing reference label: %s", out)
	}
}

func TestReportUsesVerboseLocationFormatByDefault(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true, false)
	r.ReportBroken(pipeline.BrokenExtractedLink{Source: "a.md", Reference: "missing-ref", Line: 5, Column: 1})

	out := buf.String()
	if !strings.Contains(out, "a.md (line 5, column 1)") {
		t.Errorf("missing verbose position: %s", out)
	}
}

func TestWriteAnnotationsOnlyEmitsWarningsAndFailures(t *testing.T) {
	var buf bytes.Buffer
	WriteAnnotations(&buf, sampleResults())

	out := buf.String()
	if !strings.Contains(out, "::error file=a.md,line=1,col=1::Target path not found.") {
		t.Errorf("missing error annotation: %s", out)
	}
	if strings.Contains(out, "b.md") {
		t.Errorf("OK link should not be annotated: %s", out)
	}
}
