package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/buildinfo"
	"github.com/matzehuels/surveyplot/pkg/config"
	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/export"
	"github.com/matzehuels/surveyplot/pkg/observability"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/upload"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "surveyplot"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by --config; empty means the XDG default.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Surveyplot turns survey results into charts",
		Long:         `Surveyplot renders JSON survey results as stacked percent bars, horizontal bars or donut charts and exports them as png, jpg, pdf or svg.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetExportHooks(hooks)
			observability.SetUploadHooks(hooks)
			observability.SetHTTPHooks(hooks)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/surveyplot/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.exportsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the configuration file named by --config, or the default
// one if it exists.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config path", "error", err)
			return config.Default(), nil
		}
		path = p
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// newRunner creates a pipeline runner exporting into dir.
func (c *CLI) newRunner(dir string) *pipeline.Runner {
	w := export.NewWriter(dir, export.WithLogger(c.Logger))
	return pipeline.NewRunner(w, c.Logger)
}

// newStore creates the upload store selected by cfg.
func newStore(ctx context.Context, cfg config.UploadConfig) (upload.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := uploadDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return upload.NewFileStore(dir)
	case config.BackendRedis:
		return upload.NewRedisStore(ctx, upload.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendMemory, "":
		return upload.NewMemoryStore(cfg.Capacity)
	}
	return nil, fmt.Errorf("unknown upload backend: %s", cfg.Backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/surveyplot/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// uploadDir is where the file backend stages uploads.
func uploadDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "uploads"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultOptions returns the render options preselected by cfg.
func defaultOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		PlotType:       pipeline.DefaultPlotType,
		MismatchPolicy: dataset.MismatchPolicy(cfg.Render.MismatchPolicy),
		Scheme:         cfg.Render.DefaultScheme,
		Export:         cfg.ExportOptions(),
		PreviewDPI:     cfg.Server.PreviewDPI,
	}
}
