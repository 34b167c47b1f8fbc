// Package reporter renders a finished validation run to the console, an
// optional CSV file, and (when running under a supported CI system)
// workflow-annotation lines a pull request can surface inline.
package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"mlc/internal/pipeline"
)

// Summary tallies how many links landed in each terminal status across a
// run, for the final "N links checked, N OK, N warnings, N ignored,
// N not implemented, N failed" line.
type Summary struct {
	OK             int
	Warning        int
	Ignored        int
	NotImplemented int
	Failed         int
}

// Total returns the number of links the summary covers.
func (s Summary) Total() int {
	return s.OK + s.Warning + s.Ignored + s.NotImplemented + s.Failed
}

// Reporter prints per-link outcomes to out, tallying a Summary as it goes.
// With plain set it writes uncolored text, which is what CI log consumers
// and the tests expect; otherwise status badges are colored.
type Reporter struct {
	out             io.Writer
	plain           bool
	compactLocation bool
}

// New builds a Reporter that writes to out. Set plain to true to disable
// ANSI color codes (CI logs, tests). Set compactLocation to true
// to print a link's position as the editor-style "(:line:col)" suffix
// instead of the default, more verbose "(line L, column C)" form.
func New(out io.Writer, plain bool, compactLocation bool) *Reporter {
	return &Reporter{out: out, plain: plain, compactLocation: compactLocation}
}

// Report writes one line per link across every result, in source file then
// line then column order, and returns the accumulated Summary.
func (r *Reporter) Report(results []pipeline.FinalResult) Summary {
	type row struct {
		link    pipeline.MarkupLink
		outcome pipeline.CheckOutcome
	}

	var rows []row
	var summary Summary
	for _, res := range results {
		switch res.Outcome.Status {
		case pipeline.StatusOK:
			summary.OK += len(res.Links)
		case pipeline.StatusWarning:
			summary.Warning += len(res.Links)
		case pipeline.StatusIgnored:
			summary.Ignored += len(res.Links)
		case pipeline.StatusNotImplemented:
			summary.NotImplemented += len(res.Links)
		case pipeline.StatusFailed:
			summary.Failed += len(res.Links)
		}
		for _, link := range res.Links {
			rows = append(rows, row{link: link, outcome: res.Outcome})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].link, rows[j].link
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	for _, row := range rows {
		r.printLink(row.link, row.outcome)
	}
	r.printSummary(summary)

	return summary
}

// ReportBroken writes a warning line for a Markdown reference-style link
// usage with no matching definition, per spec.md 4.J.
func (r *Reporter) ReportBroken(b pipeline.BrokenExtractedLink) {
	line := fmt.Sprintf("%s %s => reference [%s] has no matching definition",
		badge("Warning", r.plain), r.formatLocation(b.Source, b.Line, b.Column), b.Reference)
	fmt.Fprintln(r.out, line)
}

// printLink writes a single "[STATUS] source(location) => target" line,
// appending the outcome message when there is one.
func (r *Reporter) printLink(link pipeline.MarkupLink, outcome pipeline.CheckOutcome) {
	line := fmt.Sprintf("%s %s => %s", badge(outcome.Status.String(), r.plain), r.formatLocation(link.Source, link.Line, link.Column), link.Target)
	if outcome.Message != "" {
		line += " : " + outcome.Message
	}
	fmt.Fprintln(r.out, line)
}

// formatLocation renders source's position either as the compact,
// editor-style "source(:line:col)" suffix, or as "source (line L, column C)"
// -- the wording original_source's own link_extractor.rs Display impl uses
// ("{} (line {}, column {})") -- depending on which form this Reporter was
// built to use.
func (r *Reporter) formatLocation(source string, line, column int) string {
	if r.compactLocation {
		return fmt.Sprintf("%s(:%d:%d)", source, line, column)
	}
	return fmt.Sprintf("%s (line %d, column %d)", source, line, column)
}

func (r *Reporter) printSummary(s Summary) {
	line := fmt.Sprintf("\n%d links checked, %d OK, %d warnings, %d ignored, %d not implemented, %d failed",
		s.Total(), s.OK, s.Warning, s.Ignored, s.NotImplemented, s.Failed)
	if r.plain {
		fmt.Fprintln(r.out, line)
		return
	}
	if s.Failed > 0 {
		fmt.Fprintln(r.out, summaryErrorStyle.Render(line))
		return
	}
	fmt.Fprintln(r.out, summarySuccessStyle.Render(line))
}

// WriteCSV writes a row per link whose outcome is Failed (and, when
// includeWarnings is set, Warning too) to path: "source,line,column,target"
// plus a trailing "severity" column when includeWarnings is set. The
// header is always written, even when no link qualifies for a row.
func WriteCSV(path string, results []pipeline.FinalResult, includeWarnings bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"source", "line", "column", "target"}
	if includeWarnings {
		header = append(header, "severity")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		if !qualifiesForCSV(res.Outcome.Status, includeWarnings) {
			continue
		}
		for _, link := range res.Links {
			record := []string{
				link.Source,
				fmt.Sprintf("%d", link.Line),
				fmt.Sprintf("%d", link.Column),
				link.Target,
			}
			if includeWarnings {
				record = append(record, res.Outcome.Status.String())
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func qualifiesForCSV(status pipeline.OutcomeStatus, includeWarnings bool) bool {
	if status == pipeline.StatusFailed {
		return true
	}
	return includeWarnings && status == pipeline.StatusWarning
}

// WriteAnnotations emits GitHub Actions workflow-command annotations
// ("::warning file=...::message" / "::error file=...::message") for every
// link whose outcome is a Warning or Failed, so a failing link checker run
// surfaces inline on the pull request diff.
func WriteAnnotations(out io.Writer, results []pipeline.FinalResult) {
	for _, res := range results {
		command := ""
		switch res.Outcome.Status {
		case pipeline.StatusWarning:
			command = "warning"
		case pipeline.StatusFailed:
			command = "error"
		default:
			continue
		}
		for _, link := range res.Links {
			message := res.Outcome.Message
			if message == "" {
				message = fmt.Sprintf("broken link to %s", link.Target)
			}
			fmt.Fprintf(out, "::%s file=%s,line=%d,col=%d::%s\n", command, link.Source, link.Line, link.Column, message)
		}
	}
}
