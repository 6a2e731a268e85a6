package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/internal/config"
	"github.com/ludo-technologies/pyrefactor/internal/version"
	"github.com/ludo-technologies/pyrefactor/mcp"
)

const serverName = "pyrefactor"

func main() {
	configPath := pflag.StringP("config", "c", "", "Configuration file (default: discovered from each analyzed path)")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging")
	pflag.Parse()

	// stdout carries JSON-RPC; everything else goes to stderr
	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath, ".")
		if err != nil {
			logger.Error("failed to load configuration", zap.String("path", *configPath), zap.Error(err))
			os.Exit(2)
		}
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)
	mcp.RegisterTools(server, mcp.NewDependencies(cfg, *configPath, logger))

	logger.Info("server ready",
		zap.String("name", serverName),
		zap.String("version", version.Short()),
		zap.Strings("tools", []string{mcp.ToolDetectRefactorings}))

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
