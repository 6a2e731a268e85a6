package mcp

import (
	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/config"
	"github.com/ludo-technologies/pyrefactor/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	fileReader domain.FileReader
	config     *config.Config
	configPath string
	logger     *zap.Logger
}

// NewDependencies constructs the dependency set. A nil cfg makes every
// call discover configuration from the analyzed path.
func NewDependencies(cfg *config.Config, configPath string, logger *zap.Logger) *Dependencies {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dependencies{
		fileReader: service.NewFileReader(),
		config:     cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// ConfigFor returns a private copy of the configuration for one call
func (d *Dependencies) ConfigFor(target string) (*config.Config, error) {
	if d.config != nil {
		cfg := *d.config
		cfg.Input.IncludePatterns = append([]string(nil), d.config.Input.IncludePatterns...)
		cfg.Input.ExcludePatterns = append([]string(nil), d.config.Input.ExcludePatterns...)
		return &cfg, nil
	}
	return config.LoadConfig(d.configPath, target)
}
