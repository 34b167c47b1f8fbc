package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// GitTrackedFiles runs `git ls-files` in the given root directory and returns
// the set of file paths relative to the root that are tracked by Git. The
// walker does not call it; --gitignore is served by GitignoreMatcher.
//
// The returned map uses relative paths (as output by git ls-files) as keys,
// with all values set to true for O(1) membership checks.
//
// Errors are returned when the directory is not a Git repository, or the
// git binary is not found on PATH.
func GitTrackedFiles(root string) (map[string]bool, error) {
	return runGitLsFiles(root, "ls-files")
}

// UntrackedFiles runs `git ls-files --others --exclude-standard` in root and
// returns the set of files that exist on disk but are neither tracked nor
// ignored by Git. It backs the --gituntracked flag, which restricts
// discovery to files git itself doesn't already know about.
func UntrackedFiles(root string) (map[string]bool, error) {
	return runGitLsFiles(root, "ls-files", "--others", "--exclude-standard")
}

func runGitLsFiles(root string, args ...string) (map[string]bool, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = root

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed in %s: %w (is this a git repository?)", strings.Join(args, " "), root, err)
	}

	files := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			files[line] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parsing git ls-files output: %w", err)
	}

	return files, nil
}
