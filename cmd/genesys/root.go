package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/app"
	"github.com/ramonehamilton/genesys-companion/internal/config"
	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/logging"
	"github.com/ramonehamilton/genesys-companion/internal/version"
)

// cli holds the persistent flags and the lazily built application.
type cli struct {
	configPath string
	pointsPath string
	dbPath     string
	offline    bool
	logLevel   string
	jsonOut    bool

	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "genesys",
		Short: "Check Yu-Gi-Oh! decks against the Genesys point list",
		Long: `genesys decodes and encodes ydke:// deck codes, converts YDK files and
share tokens, and totals a deck's Genesys points against the configured
point cap.

Deck arguments may be a ydke:// code, a share token, a path to a .ydk file,
or "-" to read from standard input.`,
		Version:      version.GetVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", config.Path(), "configuration file")
	flags.StringVar(&c.pointsPath, "points", "", "point list JSON (overrides config)")
	flags.StringVar(&c.dbPath, "db", "", "database path (overrides config)")
	flags.BoolVar(&c.offline, "offline", false, "never contact the remote card database")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.BoolVar(&c.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		c.newDecodeCmd(),
		c.newEncodeCmd(),
		c.newShareCmd(),
		c.newUnshareCmd(),
		c.newCheckCmd(),
		c.newExportCmd(),
		c.newResolveCmd(),
		c.newPointsCmd(),
		c.newSearchCmd(),
		c.newBackupCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFrom(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if c.pointsPath != "" {
		cfg.Genesys.PointsPath = c.pointsPath
	}
	if c.dbPath != "" {
		cfg.Storage.Path = c.dbPath
	}
	if c.offline {
		cfg.Cards.Offline = true
	}
	// A one-shot command never follows the file.
	cfg.Genesys.Watch = false
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg

	level := c.logLevel
	if !cmd.Flags().Changed("log-level") && cfg.App.DebugMode {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: "console"})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// application builds the app on first use. Commands that only convert
// codes never open the database.
func (c *cli) application(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() error {
	var err error
	if c.app != nil {
		err = c.app.Close()
		c.app = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return err
}

// codes returns a deck facade for pure code conversions, which need neither
// the point list nor card metadata.
func (c *cli) codes() *facade.DeckFacade {
	return facade.NewDeckFacade(&facade.Services{Logger: c.logger})
}

// readInput resolves a deck argument: "-" reads stdin, an existing file is
// read whole, anything else is used as is.
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if !strings.HasPrefix(arg, "ydke://") {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			data, err := os.ReadFile(arg)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", arg, err)
			}
			return string(data), nil
		}
	}
	return arg, nil
}

// deckCode turns any supported deck argument into a canonical ydke code.
func (c *cli) deckCode(cmd *cobra.Command, arg string) (string, error) {
	input, err := readInput(cmd, arg)
	if err != nil {
		return "", err
	}
	parsed, err := c.codes().Import(cmd.Context(), input)
	if err != nil {
		return "", err
	}
	if parsed.Skipped > 0 {
		c.logger.Warn("Skipped unreadable lines", zap.Int("lines", parsed.Skipped))
	}
	return parsed.Code, nil
}

func (c *cli) printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
