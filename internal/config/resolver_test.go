package config

import (
	"os"
	"path/filepath"
	"testing"

	"mlc/internal/pipeline"
)

func TestResolveAppliesDefaultsWithNoFileOrFlags(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(ResolveOptions{Dir: dir, ConfigPath: filepath.Join(dir, "absent.toml")})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Throttle != 0 {
		t.Errorf("Throttle = %d, want 0", cfg.Throttle)
	}
	if !cfg.Gitignore {
		t.Errorf("Gitignore = false, want true by default")
	}
}

func TestResolveFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mlc.toml")
	content := "throttle = 500\noffline = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve(ResolveOptions{Dir: dir, ConfigPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Throttle != 500 {
		t.Errorf("Throttle = %d, want 500", cfg.Throttle)
	}
	if !cfg.Offline {
		t.Errorf("Offline = false, want true")
	}
}

func TestResolveCLIFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mlc.toml")
	if err := os.WriteFile(path, []byte("throttle = 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve(ResolveOptions{
		Dir:        dir,
		ConfigPath: path,
		CLIFlags:   map[string]any{"throttle": 1000},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Throttle != 1000 {
		t.Errorf("Throttle = %d, want 1000 (CLI flag wins)", cfg.Throttle)
	}
}

func TestResolveRejectsMissingRootDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mlc.toml")
	if err := os.WriteFile(path, []byte(`root-dir = "/does/not/exist"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(ResolveOptions{Dir: dir, ConfigPath: path})
	if err == nil {
		t.Fatal("want error for missing root-dir, got nil")
	}
}

func TestResolveParsesMarkupTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mlc.toml")
	if err := os.WriteFile(path, []byte(`markup-types = ["markdown"]`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve(ResolveOptions{Dir: dir, ConfigPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.MarkupTypes) != 1 || cfg.MarkupTypes[0] != pipeline.MarkupMarkdown {
		t.Errorf("MarkupTypes = %v, want [markdown]", cfg.MarkupTypes)
	}
}
