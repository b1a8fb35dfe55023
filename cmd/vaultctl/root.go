package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"apivault/internal/bridge"
	"apivault/internal/config"
	"apivault/internal/fallback"
	"apivault/internal/logging"
	"apivault/internal/storage"
)

type cli struct {
	flagDataDir string
	flagJSON    bool
	flagVerbose bool

	out     io.Writer
	in      io.Reader
	log     zerolog.Logger
	local   *fallback.LocalStore
	store   storage.Store
	backend string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "vaultctl",
		Short: "Manage stored APIs, credentials, settings and chat sessions",
		Long: `vaultctl reads and writes the same local storage area the desktop app
falls back to when its privileged bridge is unavailable.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.open,
		PersistentPostRunE: c.close,
	}

	root.PersistentFlags().StringVar(&c.flagDataDir, "data-dir", "", "data directory (default: APIVAULT_DATA_DIR or the platform default)")
	root.PersistentFlags().BoolVar(&c.flagJSON, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&c.flagVerbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(c.apisCmd())
	root.AddCommand(c.credsCmd())
	root.AddCommand(c.settingsCmd())
	root.AddCommand(c.sessionsCmd())
	root.AddCommand(c.chatCmd())
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.flagDataDir != "" {
		cfg.DataDir = c.flagDataDir
	}

	c.out = cmd.OutOrStdout()
	c.in = cmd.InOrStdin()
	level := "warn"
	if c.flagVerbose {
		level = "debug"
	}
	c.log = logging.New(level, zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true})

	local, err := fallback.Open(fallback.Config{
		Path:     filepath.Join(cfg.DataDir, fallback.StorageFile),
		LogLevel: cfg.GormLogLevel(),
		Logger:   c.log,
	})
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}
	c.local = local

	// No shell means no bridge transport; the probe falls through.
	store, backend, err := storage.Select(cmd.Context(), bridge.NewClient(nil), func() (storage.Store, error) {
		return local, nil
	}, c.log)
	if err != nil {
		return err
	}
	c.store = store
	c.backend = backend
	return nil
}

func (c *cli) close(*cobra.Command, []string) error {
	if c.local == nil {
		return nil
	}
	err := c.local.Close()
	c.local = nil
	return err
}

func (c *cli) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
