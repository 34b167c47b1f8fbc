package validate

import (
	"os"
	"path/filepath"

	"mlc/internal/pipeline"
)

// FileSystem checks that the resolved target path exists. When
// matchFileExtension is false and target has no extension, it additionally
// scans target's parent directory (one level deep, not following symlinks)
// for a sibling whose name matches target's stem once its own extension is
// stripped, so "see [guide](./guide)" resolves against "guide.md".
func FileSystem(target string, matchFileExtension bool) pipeline.CheckOutcome {
	const notFound = "Target path not found."

	if _, err := os.Stat(target); err == nil {
		return pipeline.OutcomeOK()
	}

	if matchFileExtension || filepath.Ext(target) != "" {
		return pipeline.OutcomeFailed(notFound)
	}

	parent := filepath.Dir(target)
	info, err := os.Stat(parent)
	if err != nil || !info.IsDir() {
		return pipeline.OutcomeFailed(notFound)
	}

	wantStem := filepath.Base(target)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return pipeline.OutcomeFailed(notFound)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stem := name[:len(name)-len(filepath.Ext(name))]
		if stem == wantStem {
			return pipeline.OutcomeOK()
		}
	}
	return pipeline.OutcomeFailed(notFound)
}
