package config

import (
	"fmt"
	"os"

	"mlc/internal/pipeline"
)

// Validate checks a resolved Config for the mistakes that would otherwise
// surface confusingly deep in the pipeline: a root directory that does not
// exist, and a negative throttle.
func Validate(cfg pipeline.Config) error {
	if cfg.RootDir != "" {
		info, err := os.Stat(cfg.RootDir)
		if err != nil {
			return pipeline.NewError(fmt.Sprintf("root directory %q does not exist", cfg.RootDir), err)
		}
		if !info.IsDir() {
			return pipeline.NewError(fmt.Sprintf("root directory %q is not a directory", cfg.RootDir), nil)
		}
	}

	if cfg.Throttle < 0 {
		return pipeline.NewError(fmt.Sprintf("throttle must be >= 0, got %d", cfg.Throttle), nil)
	}

	return nil
}
