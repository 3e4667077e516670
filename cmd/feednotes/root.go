// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, sets up logging and opens the vault with its metadata cache

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/content"
	"github.com/harper/feednotes/internal/fetch"
	"github.com/harper/feednotes/internal/logging"
	"github.com/harper/feednotes/internal/metacache"
	"github.com/harper/feednotes/internal/reconcile"
	"github.com/harper/feednotes/internal/tags"
	"github.com/harper/feednotes/internal/vault"
)

// cacheDir holds feednotes state inside the vault. Hidden folders are
// ignored by vault listings and tag scans.
const cacheDir = ".feednotes"

var (
	vaultFlag    string
	logLevelFlag string

	cfg        *config.Config
	logger     *logging.Logger
	cache      metacache.Cache
	lib        *vault.Library
	fetcher    *fetch.Client
	translator *content.Translator
)

var rootCmd = &cobra.Command{
	Use:   "feednotes",
	Short: "RSS/Atom feeds as Markdown notes",
	Long: `
███████╗███████╗███████╗██████╗ ███╗   ██╗ ██████╗ ████████╗███████╗███████╗
██╔════╝██╔════╝██╔════╝██╔══██╗████╗  ██║██╔═══██╗╚══██╔══╝██╔════╝██╔════╝
█████╗  █████╗  █████╗  ██║  ██║██╔██╗ ██║██║   ██║   ██║   █████╗  ███████╗
██╔══╝  ██╔══╝  ██╔══╝  ██║  ██║██║╚██╗██║██║   ██║   ██║   ██╔══╝  ╚════██║
██║     ███████╗███████╗██████╔╝██║ ╚████║╚██████╔╝   ██║   ███████╗███████║
╚═╝     ╚══════╝╚══════╝╚═════╝ ╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚══════╝╚══════╝

RSS/Atom feed reader that keeps every article as a Markdown note.

Each feed gets a folder in your vault with a dashboard note and one note
per item. Feed categories become hashtags under a private prefix.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cache != nil {
			if err := cache.Close(); err != nil {
				return fmt.Errorf("failed to close metadata cache: %w", err)
			}
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "vault directory (default: ~/Feednotes)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error")
}

func setup() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if vaultFlag != "" {
		cfg.VaultDir = vaultFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	level, err := logging.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		return err
	}
	logger = logging.New(os.Stderr, level)

	root := cfg.GetVaultDir()
	cache, err = openCache(cfg.GetCache(), root)
	if err != nil {
		return err
	}

	v, err := vault.Open(root, vault.Options{
		Cache:       cache,
		TemplateDir: cfg.GetTemplateDir(),
		Logger:      logger.For("vault").Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	lib = vault.NewLibrary(v, cfg.GetFeedsFolder())
	fetcher = fetch.NewClient(config.DefaultHTTPTimeout)
	translator = content.NewTranslator(nil)
	return nil
}

func openCache(kind, vaultRoot string) (metacache.Cache, error) {
	if kind == "none" {
		return metacache.NopCache{}, nil
	}
	dir := filepath.Join(vaultRoot, cacheDir)
	if err := os.MkdirAll(dir, config.DefaultDirPerms); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	c, err := metacache.OpenSQLite(filepath.Join(dir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata cache: %w", err)
	}
	return c, nil
}

func newMapper() *tags.Mapper {
	return tags.NewMapper(lib.Vault(), cfg.GetTagMapNote(), cfg.GetTagPrefix(), logger.For("tags").Logger)
}

// newPoller wires a reconciler and poller sharing one tag mapper.
func newPoller() (*reconcile.Poller, *reconcile.Reconciler, *tags.Mapper) {
	mapper := newMapper()
	rec := reconcile.New(lib, translator, mapper, logger.For("reconcile").Logger)
	poller := reconcile.NewPoller(lib, rec, fetcher, mapper, logger.For("poller").Logger, config.DefaultConcurrency)
	return poller, rec, mapper
}
