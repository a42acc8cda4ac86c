package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/julian-george/dali-datascience-app/internal/config"
	"github.com/julian-george/dali-datascience-app/internal/logger"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int
	// Lookup table flags (override config if set)
	flagZipFips  string
	flagStates   string
	flagCounties string

	// Loaded configuration
	cfg *cfgpkg.Global
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "datavis",
	Short: "Datavis: profit, geography and timeline summaries of retail orders",
	Long: `Datavis aggregates a retail order export (CSV, XLSX or a URL to either) into
mean profit by category, order counts by state and county, and monthly
quantities per category, and serves the interactive dashboard state as JSON.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datavis/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max attempts on 429/5xx when fetching a dataset URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagZipFips, "zipfips", "", "ZIP to county FIPS table (JSON, overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStates, "states", "", "state outlines (GeoJSON, overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCounties, "counties", "", "county outlines (GeoJSON, overrides config)")
}

func loadConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to read .env: %v\n", err)
	}

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults via currentConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		log = logger.New(levelFor("info"), "text")
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs >= 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if f.Changed("zipfips") {
		cfg.ZipFipsPath = flagZipFips
	}
	if f.Changed("states") {
		cfg.StatesPath = flagStates
	}
	if f.Changed("counties") {
		cfg.CountiesPath = flagCounties
	}

	log = logger.New(levelFor(cfg.LogLevel), cfg.LogFormat)
}

func levelFor(configured string) string {
	if debug {
		return "debug"
	}
	return configured
}

// currentConfig returns the loaded configuration, loading defaults if the
// initial load failed, and validates it.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if log == nil {
		log = logger.New(levelFor(cfg.LogLevel), cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
