package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// FlagValues collects every flag spec.md's CLI surface (§6) exposes. It is
// bound once in init() and read in RunE after Cobra has parsed argv.
type FlagValues struct {
	Directory              string
	Debug                  bool
	Offline                bool
	MatchFileExtension     bool
	IgnorePath             []string
	IgnoreLinks            []string
	MarkupTypes            []string
	Throttle               int
	RootDir                string
	Gitignore              bool
	GitUntracked           bool
	Files                  []string
	HTTPHeaders            []string
	DoNotWarnForRedirectTo []string
	CSVPath                string
	DisableRawLinkCheck    bool
}

// BindFlags registers every flag from spec.md §6's CLI table on cmd and
// returns the struct Cobra will populate when the command runs.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	f := cmd.Flags()
	f.BoolVarP(&fv.Debug, "debug", "d", false, "enable debug logging")
	f.BoolVarP(&fv.Offline, "offline", "o", false, "classify HTTP links as Ignored instead of checking them")
	f.BoolVar(&fv.Offline, "no-web-links", false, "alias of --offline")
	f.BoolVarP(&fv.MatchFileExtension, "match-file-extension", "e", false, "disable extension-tolerant filesystem lookup")
	f.StringSliceVarP(&fv.IgnorePath, "ignore-path", "p", nil, "comma-separated paths (may include globs) to exclude from discovery")
	f.StringSliceVarP(&fv.IgnoreLinks, "ignore-links", "i", nil, "comma-separated globs matched against raw link targets")
	f.StringSliceVarP(&fv.MarkupTypes, "markup-types", "t", nil, "comma-separated markup kinds to check: md,html")
	f.IntVarP(&fv.Throttle, "throttle", "T", 0, "minimum milliseconds between HTTP requests to the same host")
	f.StringVarP(&fv.RootDir, "root-dir", "r", "", "rebase absolute filesystem targets under this directory")
	f.BoolVarP(&fv.Gitignore, "gitignore", "g", false, "skip git-ignored markup files")
	f.BoolVarP(&fv.GitUntracked, "gituntracked", "u", false, "only check markup files git does not track or ignore")
	f.StringSliceVarP(&fv.Files, "files", "f", nil, "check only this explicit comma-separated list of files")
	f.StringArrayVarP(&fv.HTTPHeaders, "http-headers", "H", nil, `extra request header as "Name: Value" (repeatable)`)
	f.StringSliceVar(&fv.DoNotWarnForRedirectTo, "do-not-warn-for-redirect-to", nil, "comma-separated globs matched against the final response URL to suppress redirect warnings")
	f.StringVar(&fv.CSVPath, "csv", "", "write a CSV report to this path")
	f.BoolVarP(&fv.DisableRawLinkCheck, "disable-raw-link-check", "c", false, "disable raw-URL scanning inside fenced code blocks")

	return fv
}

// parseHTTPHeaders turns "Name: Value" entries into a header map, logging
// (via the returned error) the first entry that cannot be split.
func parseHTTPHeaders(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --http-headers entry %q, want \"Name: Value\"", entry)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// changedFlags returns the flat dotted-key map config.Resolve expects for
// its CLIFlags layer, containing only the flags the user actually set on
// this invocation -- an unset flag's zero value must never shadow a value
// from .mlc.toml.
func changedFlags(cmd *cobra.Command, fv *FlagValues, directory string) (map[string]any, error) {
	out := map[string]any{"directory": directory}

	set := func(name string, value any) {
		if cmd.Flags().Changed(name) {
			out[name] = value
		}
	}

	set("debug", fv.Debug)
	if cmd.Flags().Changed("offline") || cmd.Flags().Changed("no-web-links") {
		out["offline"] = fv.Offline
	}
	set("match-file-extension", fv.MatchFileExtension)
	set("ignore-path", fv.IgnorePath)
	set("ignore-links", fv.IgnoreLinks)
	set("markup-types", fv.MarkupTypes)
	set("throttle", fv.Throttle)
	set("root-dir", fv.RootDir)
	set("gitignore", fv.Gitignore)
	if cmd.Flags().Changed("gituntracked") {
		out["git-untracked"] = fv.GitUntracked
	}
	set("files", fv.Files)
	set("do-not-warn-for-redirect-to", fv.DoNotWarnForRedirectTo)
	set("csv", fv.CSVPath)
	set("disable-raw-link-check", fv.DisableRawLinkCheck)

	if cmd.Flags().Changed("http-headers") {
		headers, err := parseHTTPHeaders(fv.HTTPHeaders)
		if err != nil {
			return nil, err
		}
		out["http-headers"] = headers
	}

	return out, nil
}
