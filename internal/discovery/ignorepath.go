package discovery

import (
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// PathGlobMatcher evaluates a fixed list of doublestar glob patterns (the
// config's ignore_path entries) against discovered paths. Unlike
// GitignoreMatcher, it has no file-based source and no directory hierarchy
// to walk: every pattern is checked against every path directly, which is
// exactly what ignore_path's flat glob-list semantics call for.
type PathGlobMatcher struct {
	patterns []string
	logger   *slog.Logger
}

// NewPathGlobMatcher compiles the given glob patterns. An invalid pattern is
// skipped with a logged warning rather than failing the whole run, since a
// single bad entry in a user's config shouldn't block discovery entirely.
func NewPathGlobMatcher(patterns []string) *PathGlobMatcher {
	logger := slog.Default().With("component", "ignore-path")

	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if err := doublestar.ValidatePattern(p); err != nil {
			logger.Warn("ignoring invalid ignore_path pattern", "pattern", p, "error", err)
			continue
		}
		valid = append(valid, p)
	}

	return &PathGlobMatcher{patterns: valid, logger: logger}
}

// IsIgnored reports whether path matches any configured ignore_path glob.
// The path is slash-normalized before matching, since ignore_path entries
// are written with forward slashes regardless of host OS.
func (m *PathGlobMatcher) IsIgnored(path string, isDir bool) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range m.patterns {
		ok, err := doublestar.Match(pattern, normalized)
		if err != nil {
			continue
		}
		if ok {
			m.logger.Debug("path matched ignore_path pattern", "path", normalized, "pattern", pattern)
			return true
		}
	}
	return false
}

var _ Ignorer = (*PathGlobMatcher)(nil)
