// Package config resolves the options a run is invoked with from three
// layers -- built-in defaults, an optional .mlc.toml file, and CLI flags --
// and sets up the process-wide slog logger.
package config

import "mlc/internal/pipeline"

// FileConfig mirrors the subset of pipeline.Config a .mlc.toml file may
// set. Fields are pointers so a config loader can tell "absent" apart from
// "explicitly set to the zero value" when attributing layers.
type FileConfig struct {
	RootDir                *string           `toml:"root-dir"`
	MarkupTypes            []string          `toml:"markup-types"`
	MatchFileExtension     *bool             `toml:"match-file-extension"`
	IgnorePath             []string          `toml:"ignore-path"`
	IgnoreLinks            []string          `toml:"ignore-links"`
	DoNotWarnForRedirectTo []string          `toml:"do-not-warn-for-redirect-to"`
	Throttle               *int              `toml:"throttle"`
	Offline                *bool             `toml:"offline"`
	Gitignore              *bool             `toml:"gitignore"`
	GitUntracked           *bool             `toml:"git-untracked"`
	DisableRawLinkCheck    *bool             `toml:"disable-raw-link-check"`
	HTTPHeaders            map[string]string `toml:"http-headers"`
	CSVPath                *string           `toml:"csv"`
	Debug                  *bool             `toml:"debug"`
}

// Defaults returns the built-in baseline every run starts from, before a
// config file or CLI flags override any field.
func Defaults() pipeline.Config {
	return pipeline.Config{
		RootDir:             ".",
		MarkupTypes:         nil, // nil means "every known kind", per discovery.kindSet
		MatchFileExtension:  false,
		Throttle:            0,
		Offline:             false,
		Gitignore:           true,
		GitUntracked:        false,
		DisableRawLinkCheck: false,
	}
}

func parseMarkupKind(name string) (pipeline.MarkupKind, bool) {
	switch name {
	case "markdown", "md":
		return pipeline.MarkupMarkdown, true
	case "html":
		return pipeline.MarkupHTML, true
	default:
		return pipeline.MarkupUnknown, false
	}
}
