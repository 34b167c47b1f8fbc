package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	koanf "github.com/knadh/koanf/v2"
	"github.com/knadh/koanf/providers/confmap"

	"mlc/internal/pipeline"
)

// DefaultConfigFileName is the config file Resolve looks for in Dir when
// ConfigPath is not set explicitly.
const DefaultConfigFileName = ".mlc.toml"

// ResolveOptions is everything Resolve needs to build a pipeline.Config:
// where to look for a config file, and the CLI flag overrides (highest
// precedence layer).
type ResolveOptions struct {
	// Dir is the directory mlc was invoked against; DefaultConfigFileName
	// is looked up relative to it unless ConfigPath is set.
	Dir string

	// ConfigPath overrides the default .mlc.toml lookup location.
	ConfigPath string

	// CLIFlags holds flat dotted keys for every flag the user explicitly
	// set on the command line (checked via cmd.Flags().Changed), so an
	// unset flag's zero value never shadows a config-file value.
	CLIFlags map[string]any
}

// Resolve runs the 3-layer resolution: built-in defaults, then an optional
// .mlc.toml, then explicit CLI flags, merging into one pipeline.Config.
func Resolve(opts ResolveOptions) (pipeline.Config, error) {
	k := koanf.New(".")

	defaults := Defaults()
	if err := k.Load(confmap.Provider(configToFlatMap(defaults), "."), nil); err != nil {
		return pipeline.Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	path := opts.ConfigPath
	if path == "" {
		path = filepath.Join(opts.Dir, DefaultConfigFileName)
	}
	fc, err := LoadFromFileIfExists(path)
	if err != nil {
		return pipeline.Config{}, err
	}
	if fc != nil {
		slog.Debug("loaded config file", "path", path)
		if err := k.Load(confmap.Provider(fileConfigToFlatMap(fc), "."), nil); err != nil {
			return pipeline.Config{}, fmt.Errorf("merging %s: %w", path, err)
		}
	}

	if len(opts.CLIFlags) > 0 {
		if err := k.Load(confmap.Provider(opts.CLIFlags, "."), nil); err != nil {
			return pipeline.Config{}, fmt.Errorf("merging CLI flags: %w", err)
		}
	}

	cfg := flatMapToConfig(k)
	if err := Validate(cfg); err != nil {
		return pipeline.Config{}, err
	}
	return cfg, nil
}

func configToFlatMap(c pipeline.Config) map[string]any {
	return map[string]any{
		"directory":                 c.Directory,
		"files":                     c.Files,
		"root-dir":                  c.RootDir,
		"markup-types":              markupKindsToStrings(c.MarkupTypes),
		"match-file-extension":      c.MatchFileExtension,
		"ignore-path":               c.IgnorePath,
		"ignore-links":              c.IgnoreLinks,
		"do-not-warn-for-redirect-to": c.DoNotWarnForRedirectTo,
		"throttle":                  c.Throttle,
		"offline":                   c.Offline,
		"gitignore":                 c.Gitignore,
		"git-untracked":             c.GitUntracked,
		"disable-raw-link-check":    c.DisableRawLinkCheck,
		"http-headers":              c.HTTPHeaders,
		"csv":                       c.CSVPath,
		"debug":                     c.Debug,
	}
}

func fileConfigToFlatMap(fc *FileConfig) map[string]any {
	m := map[string]any{}
	if fc.RootDir != nil {
		m["root-dir"] = *fc.RootDir
	}
	if fc.MarkupTypes != nil {
		m["markup-types"] = fc.MarkupTypes
	}
	if fc.MatchFileExtension != nil {
		m["match-file-extension"] = *fc.MatchFileExtension
	}
	if fc.IgnorePath != nil {
		m["ignore-path"] = fc.IgnorePath
	}
	if fc.IgnoreLinks != nil {
		m["ignore-links"] = fc.IgnoreLinks
	}
	if fc.DoNotWarnForRedirectTo != nil {
		m["do-not-warn-for-redirect-to"] = fc.DoNotWarnForRedirectTo
	}
	if fc.Throttle != nil {
		m["throttle"] = *fc.Throttle
	}
	if fc.Offline != nil {
		m["offline"] = *fc.Offline
	}
	if fc.Gitignore != nil {
		m["gitignore"] = *fc.Gitignore
	}
	if fc.GitUntracked != nil {
		m["git-untracked"] = *fc.GitUntracked
	}
	if fc.DisableRawLinkCheck != nil {
		m["disable-raw-link-check"] = *fc.DisableRawLinkCheck
	}
	if fc.HTTPHeaders != nil {
		m["http-headers"] = fc.HTTPHeaders
	}
	if fc.CSVPath != nil {
		m["csv"] = *fc.CSVPath
	}
	if fc.Debug != nil {
		m["debug"] = *fc.Debug
	}
	return m
}

func flatMapToConfig(k *koanf.Koanf) pipeline.Config {
	return pipeline.Config{
		Directory:              k.String("directory"),
		Files:                  k.Strings("files"),
		RootDir:                k.String("root-dir"),
		MarkupTypes:            stringsToMarkupKinds(k.Strings("markup-types")),
		MatchFileExtension:     k.Bool("match-file-extension"),
		IgnorePath:             k.Strings("ignore-path"),
		IgnoreLinks:            k.Strings("ignore-links"),
		DoNotWarnForRedirectTo: k.Strings("do-not-warn-for-redirect-to"),
		Throttle:               k.Int("throttle"),
		Offline:                k.Bool("offline"),
		Gitignore:              k.Bool("gitignore"),
		GitUntracked:           k.Bool("git-untracked"),
		DisableRawLinkCheck:    k.Bool("disable-raw-link-check"),
		HTTPHeaders:            stringMap(k.StringMap("http-headers")),
		CSVPath:                k.String("csv"),
		Debug:                  k.Bool("debug"),
	}
}

func stringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

func markupKindsToStrings(kinds []pipeline.MarkupKind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.String())
	}
	return out
}

func stringsToMarkupKinds(names []string) []pipeline.MarkupKind {
	var kinds []pipeline.MarkupKind
	for _, name := range names {
		if kind, ok := parseMarkupKind(strings.ToLower(name)); ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
