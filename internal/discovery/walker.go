package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mlc/internal/pipeline"
)

// extensionKinds maps a lower-cased file extension to the MarkupKind MLC
// knows how to extract links from. Any extension absent from this table is
// skipped before any I/O happens.
var extensionKinds = map[string]pipeline.MarkupKind{
	".md":       pipeline.MarkupMarkdown,
	".markdown": pipeline.MarkupMarkdown,
	".mkdown":   pipeline.MarkupMarkdown,
	".mkdn":     pipeline.MarkupMarkdown,
	".mkd":      pipeline.MarkupMarkdown,
	".mdwn":     pipeline.MarkupMarkdown,
	".mdtxt":    pipeline.MarkupMarkdown,
	".mdtext":   pipeline.MarkupMarkdown,
	".text":     pipeline.MarkupMarkdown,
	".rmd":      pipeline.MarkupMarkdown,
	".htm":      pipeline.MarkupHTML,
	".html":     pipeline.MarkupHTML,
	".xhtml":    pipeline.MarkupHTML,
}

// WalkerConfig holds everything the Walker needs to traverse a tree (or an
// explicit file list) and produce the ordered set of MarkupFiles to extract
// links from.
type WalkerConfig struct {
	// Root is the directory to walk. Ignored when Files is non-empty.
	Root string

	// Files, when non-empty, bypasses traversal entirely: each entry is
	// made absolute (symlinks are not resolved) and classified directly,
	// per spec.md's --files flag.
	Files []string

	// MarkupTypes restricts discovery to the given kinds. Empty means both
	// Markdown and HTML are discovered.
	MarkupTypes []pipeline.MarkupKind

	// Ignorer composes every active ignore source (.gitignore, ignore_path
	// globs). May be nil.
	Ignorer Ignorer

	// GitUntracked restricts traversal to files git itself doesn't track or
	// ignore (via `git ls-files --others --exclude-standard`).
	GitUntracked bool

	// Concurrency bounds the readability-preflight worker pool. Defaults to
	// runtime.NumCPU() when <= 0.
	Concurrency int
}

// Walker discovers markup files under a directory tree (or validates an
// explicit file list), applying ignore rules and extension-based dispatch.
type Walker struct {
	logger *slog.Logger
}

func NewWalker() *Walker {
	return &Walker{logger: slog.Default().With("component", "walker")}
}

// Walk returns the ordered list of MarkupFiles to extract links from.
//
// It proceeds in two phases: a single-threaded filepath.WalkDir (or explicit
// list canonicalization) collects candidate paths under the ignore rules,
// then a bounded errgroup pool preflights each candidate for readability so
// an unreadable file produces one warning here rather than a confusing
// failure deep inside an extractor.
func (w *Walker) Walk(ctx context.Context, cfg WalkerConfig) ([]pipeline.MarkupFile, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	allowedKinds := kindSet(cfg.MarkupTypes)

	var candidates []string
	var err error
	if len(cfg.Files) > 0 {
		candidates, err = w.collectExplicit(cfg.Files)
	} else {
		candidates, err = w.collectTree(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	files := make([]pipeline.MarkupFile, len(candidates))
	readable := make([]bool, len(candidates))

	for i, path := range candidates {
		i, path := i, path
		kind, ok := classify(path, allowedKinds)
		if !ok {
			continue
		}
		files[i] = pipeline.MarkupFile{Path: path, Kind: kind}
		readable[i] = true

		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			f, ferr := os.Open(path)
			if ferr != nil {
				w.logger.Warn("skipping unreadable file", "path", path, "error", ferr)
				readable[i] = false
				return nil
			}
			_ = f.Close()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preflighting discovered files: %w", err)
	}

	result := make([]pipeline.MarkupFile, 0, len(files))
	for i, f := range files {
		if f.Path == "" || !readable[i] {
			continue
		}
		result = append(result, f)
	}

	w.logger.Info("discovery complete", "files", len(result))
	return result, nil
}

func (w *Walker) collectExplicit(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.logger.Warn("could not resolve explicit file path", "path", p, "error", err)
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			w.logger.Warn("explicit file does not exist", "path", p, "error", err)
			continue
		}
		out = append(out, abs)
	}
	return out, nil
}

func (w *Walker) collectTree(ctx context.Context, cfg WalkerConfig) ([]string, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %s: %w", cfg.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	var untracked map[string]bool
	if cfg.GitUntracked {
		untracked, err = UntrackedFiles(root)
		if err != nil {
			return nil, fmt.Errorf("loading git-untracked files: %w", err)
		}
	}

	symResolver := NewSymlinkResolver()

	var (
		mu    sync.Mutex
		paths []string
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, derr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if derr != nil {
			w.logger.Debug("walk error", "path", path, "error", derr)
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		isDir := d.IsDir()
		if isDir && d.Name() == ".git" {
			return fs.SkipDir
		}

		if cfg.Ignorer != nil && cfg.Ignorer.IsIgnored(relPath, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		if isDir {
			return nil
		}

		if cfg.GitUntracked && untracked != nil && !untracked[relPath] {
			return nil
		}

		// Every file, symlink or not, is resolved to its canonical real
		// path and checked against the same visited set: a plain file
		// reached twice (e.g. because a later symlink resolves to it)
		// must still surface exactly one MarkupFile, per spec.md's
		// canonical-path dedup invariant.
		realPath, isDuplicate, rerr := symResolver.Resolve(path)
		if rerr != nil {
			w.logger.Debug("unresolvable path", "path", relPath, "error", rerr)
			return nil
		}
		if isDuplicate {
			w.logger.Debug("already discovered via another path", "path", relPath, "real_path", realPath)
			return nil
		}
		symResolver.MarkVisited(realPath)

		mu.Lock()
		paths = append(paths, realPath)
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking directory %s: %w", root, walkErr)
	}

	return paths, nil
}

func kindSet(kinds []pipeline.MarkupKind) map[pipeline.MarkupKind]bool {
	if len(kinds) == 0 {
		return map[pipeline.MarkupKind]bool{
			pipeline.MarkupMarkdown: true,
			pipeline.MarkupHTML:     true,
		}
	}
	set := make(map[pipeline.MarkupKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

func classify(path string, allowed map[pipeline.MarkupKind]bool) (pipeline.MarkupKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, known := extensionKinds[ext]
	if !known || !allowed[kind] {
		return pipeline.MarkupUnknown, false
	}
	return kind, true
}
