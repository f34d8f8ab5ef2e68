package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/moviedash/internal/config"
	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	dataPath string
	debug    bool

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "moviedash",
	Short: "moviedash: filter and aggregate the TMDB movie dataset",
	Long:  `moviedash loads a TMDB movie metadata table (CSV, TSV or XLSX), filters it by
release year, rating, genre and production company, and renders dashboard views
in the terminal, as Markdown or JSON, or over an HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.moviedash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "movie table to load (overrides data_path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	cfgErr = err
	if err != nil {
		// Non-fatal: commands that need config report cfgErr
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		logger = cfgpkg.NewLogger(nil, debug, os.Stderr)
		return
	}
	cfg = c
	if dataPath != "" {
		cfg.DataPath = dataPath
	}
	logger = cfgpkg.NewLogger(cfg, debug, os.Stderr)
	logger.WithField("data_path", cfg.DataPath).Debug("Configuration loaded")
}

// settings returns the loaded configuration or the error that prevented it.
func settings() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, cfgErr
		}
		loadConfig()
		if cfg == nil {
			return nil, cfgErr
		}
	}
	return cfg, nil
}

func logEntry() *logrus.Entry {
	if logger == nil {
		logger = cfgpkg.NewLogger(cfg, debug, os.Stderr)
	}
	return logrus.NewEntry(logger)
}

func newCache(c *cfgpkg.Global) *dataset.Cache {
	return dataset.NewCache(dataset.Options{Delimiter: c.DelimiterRune(), Sheet: c.Sheet}, logEntry())
}

// loadTable reads the configured data file.
func loadTable() (*dataset.Table, *cfgpkg.Global, error) {
	c, err := settings()
	if err != nil {
		return nil, nil, err
	}
	t, err := newCache(c).Load(c.DataPath)
	if err != nil {
		return nil, nil, err
	}
	logEntry().WithField("path", t.Source).WithField("rows", t.Len()).Debug("Dataset ready")
	return t, c, nil
}
