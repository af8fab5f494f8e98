package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/config"
	"github.com/matzehuels/surveyplot/pkg/server"
)

// serveOpts holds the flags of the serve command. Empty values fall back
// to the config file.
type serveOpts struct {
	addr      string
	exportDir string
	store     string // memory, file or redis
	redisAddr string
	noSweep   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form",
		Long: `Run the web form for uploading surveys, previewing charts and exporting them.

Exports older than the startup threshold (30 days by default) are deleted
when the server starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.exportDir, "export-dir", "", "export directory")
	cmd.Flags().StringVar(&opts.store, "store", "", "upload store: memory, file, redis")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address for --store redis")
	cmd.Flags().BoolVar(&opts.noSweep, "no-sweep", false, "skip the startup cleanup of old exports")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (so serveOpts) apply(cfg *config.Config) error {
	if so.addr != "" {
		cfg.Server.Addr = so.addr
	}
	if so.exportDir != "" {
		cfg.Export.Dir = so.exportDir
	}
	if so.store != "" {
		cfg.Upload.Backend = so.store
	}
	if so.redisAddr != "" {
		cfg.Upload.RedisAddr = so.redisAddr
	}
	return cfg.Validate()
}

func (c *CLI) runServe(ctx context.Context, so serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := so.apply(cfg); err != nil {
		return err
	}

	store, err := newStore(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	defaults := defaultOptions(cfg)
	defaults.Logger = c.Logger
	srv, err := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		UploadTTL:      cfg.Upload.TTL.Duration,
		SweepDays:      cfg.Retention.SweepDays,
		StartupDays:    cfg.Retention.StartupDays,
		Defaults:       defaults,
	}, c.newRunner(cfg.Export.Dir), store, c.Logger)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer srv.Close()

	if !so.noSweep {
		res, err := srv.SweepOnStartup(ctx)
		if err != nil {
			c.Logger.Warn("startup sweep failed", "error", err)
		} else if len(res.Deleted) > 0 {
			printInfo("%s", res.Message)
		}
	}

	printKeyValue("Address", cfg.Server.Addr)
	printKeyValue("Exports", cfg.Export.Dir)
	printKeyValue("Uploads", cfg.Upload.Backend)
	return srv.ListenAndServe(ctx)
}
