// Package resolve turns a raw filesystem-classified link target, plus the
// document it was found in, into an absolute path ready for validation.
package resolve

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// TargetLink normalizes target's separators, strips any trailing
// "#fragment" (logging that it is not checked, per spec.md's explicit
// non-goal of fragment resolution), rebases a root-relative target under
// rootDir when one is configured, and joins relative targets against
// source's parent directory.
func TargetLink(source, target, rootDir string) (string, error) {
	logger := slog.Default().With("component", "resolve")

	normalized := strings.ReplaceAll(target, "/", string(os.PathSeparator))
	normalized = strings.ReplaceAll(normalized, "\\", string(os.PathSeparator))

	if idx := strings.IndexByte(normalized, '#'); idx >= 0 {
		logger.Debug("stripping fragment, chapter part is not checked",
			"target", target, "fragment", normalized[idx:])
		normalized = normalized[:idx]
	}

	fsTarget := normalized
	if strings.HasPrefix(normalized, string(os.PathSeparator)) && rootDir != "" {
		newRoot, err := filepath.EvalSymlinks(rootDir)
		if err != nil {
			newRoot, err = filepath.Abs(rootDir)
			if err != nil {
				return "", err
			}
		}
		fsTarget = filepath.Join(newRoot, normalized[1:])
	}

	return absoluteTargetPath(source, fsTarget)
}

func absoluteTargetPath(source, target string) (string, error) {
	absSource, err := filepath.EvalSymlinks(source)
	if err != nil {
		absSource, err = filepath.Abs(source)
		if err != nil {
			return "", err
		}
	}

	if filepath.IsAbs(target) {
		return target, nil
	}

	parent := filepath.Dir(absSource)
	if parent == "" {
		parent = string(os.PathSeparator)
	}
	return filepath.Join(parent, target), nil
}
