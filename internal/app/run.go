// Package app wires every MLC stage together: discovery, extraction,
// classification, resolution, scheduling, and reporting. It is the only
// package that imports all of them, so internal/pipeline itself can stay a
// dependency-free type package every other stage imports freely.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"mlc/internal/discovery"
	"mlc/internal/htmlextract"
	"mlc/internal/ignoreregion"
	"mlc/internal/linkkind"
	"mlc/internal/markdownextract"
	"mlc/internal/pipeline"
	"mlc/internal/reporter"
	"mlc/internal/resolve"
	"mlc/internal/scheduler"
)

// Report is everything a finished run produced.
type Report struct {
	Summary reporter.Summary
	Results []pipeline.FinalResult
	Broken  []pipeline.BrokenExtractedLink
}

// HasErrors reports whether the run should cause a non-zero process exit.
func (r Report) HasErrors() bool {
	return r.Summary.Failed > 0
}

// extracted bundles one file's extraction output so the per-file extraction
// phase and the single-threaded grouping phase that follows stay decoupled.
type extracted struct {
	links  []pipeline.MarkupLink
	broken []pipeline.BrokenExtractedLink
}

// Run executes the full MLC pipeline against cfg: discover markup files,
// extract their links, resolve and deduplicate targets, validate every
// distinct target with bounded concurrency, print the report, and write the
// optional CSV file. Run never panics on a per-file or per-link error; those
// surface as Failed/Warning outcomes or per-file log warnings instead.
func Run(ctx context.Context, cfg pipeline.Config) (Report, error) {
	logger := slog.Default().With("component", "app")

	ignorer, err := buildIgnorer(cfg)
	if err != nil {
		return Report{}, err
	}

	walker := discovery.NewWalker()
	files, err := walker.Walk(ctx, discovery.WalkerConfig{
		Root:         cfg.Directory,
		Files:        cfg.Files,
		MarkupTypes:  cfg.MarkupTypes,
		Ignorer:      ignorer,
		GitUntracked: cfg.GitUntracked,
	})
	if err != nil {
		return Report{}, pipeline.NewError("discovering markup files", err)
	}
	logger.Info("discovered files", "count", len(files))

	perFile := make([]extracted, len(files))
	{
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxInt(runtime.NumCPU(), 1))
		for i, f := range files {
			i, f := i, f
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				result, ferr := extractFile(f, cfg)
				if ferr != nil {
					logger.Warn("skipping file", "path", f.Path, "error", ferr)
					return nil
				}
				perFile[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Report{}, pipeline.NewError("extracting links", err)
		}
	}

	var allLinks []pipeline.MarkupLink
	var allBroken []pipeline.BrokenExtractedLink
	for _, r := range perFile {
		allLinks = append(allLinks, r.links...)
		allBroken = append(allBroken, r.broken...)
	}

	targets, linksByTarget, ignoredOutcomes := groupLinks(allLinks, cfg)

	sched := scheduler.New()
	results := sched.Run(ctx, targets, linksByTarget, cfg)
	results = append(results, ignoredOutcomes...)

	ci := isCI()
	// The editor-style ":line:col" suffix is conventional for CI log
	// viewers (GitHub Actions autolinks "file:line:col"); a local terminal
	// run gets the more readable "(line L, column C)" form instead.
	rep := reporter.New(os.Stdout, !isColorTerminal(), ci)
	summary := rep.Report(results)
	for _, b := range allBroken {
		rep.ReportBroken(b)
	}

	if ci {
		reporter.WriteAnnotations(os.Stdout, results)
	}

	if cfg.CSVPath != "" {
		// spec.md's external-interfaces table exposes no flag for
		// including Warning rows in the CSV, so this run always writes
		// Failed-only rows -- the includeWarnings branch in WriteCSV
		// exists for callers that do have such a setting.
		if err := reporter.WriteCSV(cfg.CSVPath, results, false); err != nil {
			return Report{}, pipeline.NewError("writing CSV report", err)
		}
	}

	return Report{Summary: summary, Results: results, Broken: allBroken}, nil
}

func extractFile(f pipeline.MarkupFile, cfg pipeline.Config) (extracted, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return extracted{}, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	text := string(data)

	regions := ignoreregion.FromText(text)

	var links []pipeline.MarkupLink
	var broken []pipeline.BrokenExtractedLink

	switch f.Kind {
	case pipeline.MarkupHTML:
		links = htmlextract.Find(text, regions.IsLineIgnored)
	case pipeline.MarkupMarkdown:
		result := markdownextract.Find(text, regions.IsLineIgnored, !cfg.DisableRawLinkCheck)
		links = result.Links
		broken = result.Broken
	default:
		return extracted{}, fmt.Errorf("unknown markup kind for %s", f.Path)
	}

	for i := range links {
		links[i].Source = f.Path
	}
	for i := range broken {
		broken[i].Source = f.Path
	}

	return extracted{links: links, broken: broken}, nil
}

// groupLinks classifies and resolves every extracted link, building the
// Target -> []MarkupLink grouping map the scheduler validates against.
// Links matching an ignore_links glob, or HTTP links under --offline, are
// pulled out up front and reported directly as Ignored without ever
// reaching the scheduler, per spec.md's "ignore gate runs before
// classification" rule.
func groupLinks(links []pipeline.MarkupLink, cfg pipeline.Config) ([]pipeline.Target, map[pipeline.Target][]pipeline.MarkupLink, []pipeline.FinalResult) {
	grouped := make(map[pipeline.Target][]pipeline.MarkupLink)
	var order []pipeline.Target
	var ignored []pipeline.FinalResult

	for _, link := range links {
		if matchesAnyGlob(cfg.IgnoreLinks, link.Target) {
			ignored = append(ignored, pipeline.FinalResult{
				Target:  pipeline.Target{Normalized: link.Target, Kind: pipeline.LinkUnknown},
				Outcome: pipeline.OutcomeIgnored("Link matches an ignore_links pattern."),
				Links:   []pipeline.MarkupLink{link},
			})
			continue
		}

		kind := linkkind.Classify(link.Target)

		if cfg.Offline && kind == pipeline.LinkHTTP {
			ignored = append(ignored, pipeline.FinalResult{
				Target:  pipeline.Target{Normalized: link.Target, Kind: pipeline.LinkHTTP},
				Outcome: pipeline.OutcomeIgnored("Offline mode: network requests are disabled."),
				Links:   []pipeline.MarkupLink{link},
			})
			continue
		}

		normalized := link.Target
		if kind == pipeline.LinkFileSystem {
			resolved, err := resolve.TargetLink(link.Source, link.Target, cfg.RootDir)
			if err != nil {
				slog.Default().Warn("failed to resolve filesystem target", "source", link.Source, "target", link.Target, "error", err)
				ignored = append(ignored, pipeline.FinalResult{
					Target:  pipeline.Target{Normalized: link.Target, Kind: pipeline.LinkFileSystem},
					Outcome: pipeline.OutcomeFailed(fmt.Sprintf("Could not resolve target path. %s", err)),
					Links:   []pipeline.MarkupLink{link},
				})
				continue
			}
			normalized = resolved
		}

		target := pipeline.Target{Normalized: normalized, Kind: kind}
		if _, seen := grouped[target]; !seen {
			order = append(order, target)
		}
		grouped[target] = append(grouped[target], link)
	}

	return order, grouped, ignored
}

func matchesAnyGlob(patterns []string, target string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, target); err == nil && ok {
			return true
		}
	}
	return false
}

// buildIgnorer composes the ignore_path glob matcher and, when --gitignore
// is set, a nested-.gitignore-aware matcher into one discovery.Ignorer.
// --gituntracked is handled separately inside discovery.Walker since it
// restricts traversal to a positive allow-set rather than excluding paths.
func buildIgnorer(cfg pipeline.Config) (discovery.Ignorer, error) {
	var ignorers []discovery.Ignorer

	if len(cfg.IgnorePath) > 0 {
		ignorers = append(ignorers, discovery.NewPathGlobMatcher(cfg.IgnorePath))
	}

	if cfg.Gitignore {
		root := cfg.Directory
		if root == "" {
			root = "."
		}
		matcher, err := discovery.NewGitignoreMatcher(root)
		if err != nil {
			slog.Default().Warn("gitignore matcher unavailable", "error", err)
		} else {
			ignorers = append(ignorers, matcher)
		}
	}

	return discovery.NewCompositeIgnorer(ignorers...), nil
}

func isCI() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

func isColorTerminal() bool {
	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
