package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// SymlinkResolver resolves every path the walker visits -- symlink or plain
// file -- to its canonical real path and tracks which real paths have
// already been returned, so the same file reached twice (once directly,
// once through a symlink that targets it) surfaces as exactly one
// MarkupFile. filepath.WalkDir does not follow symlinked directories, so the
// walker meets no directory cycles; a symlink chain that loops on itself
// makes filepath.EvalSymlinks fail, and Resolve returns that error.
//
// SymlinkResolver is safe for concurrent use. All access to the visited set is
// protected by a sync.RWMutex.
type SymlinkResolver struct {
	visited map[string]bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewSymlinkResolver creates a new SymlinkResolver with an empty visited set.
func NewSymlinkResolver() *SymlinkResolver {
	return &SymlinkResolver{
		visited: make(map[string]bool),
		logger:  slog.Default().With("component", "discovery.symlink"),
	}
}

// Resolve canonicalizes path and reports whether its real path has already
// been returned by a previous call. It returns:
//   - realPath: the resolved real filesystem path (empty string on error).
//   - isDuplicate: true if realPath was already seen, i.e. a second route to
//     a file already discovered.
//   - err: non-nil if the symlink is dangling (target does not exist) or another
//     filesystem error occurs.
//
// When a duplicate is reported, the caller should skip the path. When an error is
// returned (e.g., dangling symlink), the caller should skip with a warning.
//
// Resolve does NOT automatically mark the path as visited; the caller must call
// MarkVisited after deciding to process the path. This two-step design allows
// the caller to check before committing.
func (s *SymlinkResolver) Resolve(path string) (realPath string, isDuplicate bool, err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, fmt.Errorf("dangling symlink %s: %w", path, err)
		}
		return "", false, fmt.Errorf("resolving symlink %s: %w", path, err)
	}

	s.mu.RLock()
	duplicate := s.visited[resolved]
	s.mu.RUnlock()

	if duplicate {
		s.logger.Debug("path already discovered via another route",
			"path", path,
			"real_path", resolved,
		)
		return resolved, true, nil
	}

	return resolved, false, nil
}

// MarkVisited records a real path as visited. After calling MarkVisited,
// subsequent calls to Resolve for paths that resolve to the same real path
// will report isDuplicate=true.
func (s *SymlinkResolver) MarkVisited(realPath string) {
	s.mu.Lock()
	s.visited[realPath] = true
	s.mu.Unlock()
}

// Reset clears the visited set, so the resolver can be reused for a fresh
// traversal of the same, or a different, directory tree.
func (s *SymlinkResolver) Reset() {
	s.mu.Lock()
	s.visited = make(map[string]bool)
	s.mu.Unlock()
}

// VisitedCount returns the number of distinct real paths discovered so far.
// This is useful for diagnostics and logging.
func (s *SymlinkResolver) VisitedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visited)
}

// IsSymlink reports whether the file at the given path is a symbolic link.
// It uses os.Lstat (which does not follow symlinks) to check the file mode,
// so it never conflates a symlink with the file it points at.
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("lstat %s: %w", path, err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}
