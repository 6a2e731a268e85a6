package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ludo-technologies/pyrefactor/internal/config"
)

// GetExplicitFlags returns the flags the user set on the command line
func GetExplicitFlags(cmd *cobra.Command) map[string]bool {
	return config.ExplicitFlags(cmd.Flags())
}

// generateTimestampedFileName generates a filename with timestamp suffix
func generateTimestampedFileName(extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("refactor_%s.%s", timestamp, extension)
}

// generateOutputFilePath places a timestamped report under dir, creating it
func generateOutputFilePath(dir, extension string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return filepath.Join(dir, generateTimestampedFileName(extension)), nil
}

// newLogger builds the stderr logger. Verbose switches to a development
// encoder at debug level.
func newLogger(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
