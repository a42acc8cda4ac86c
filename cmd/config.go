package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	cfgpkg "github.com/julian-george/dali-datascience-app/internal/config"
	"github.com/julian-george/dali-datascience-app/internal/dashboard"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Datavis configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if _, err := currentConfig(); err != nil {
			return err
		}
		fmt.Fprintf(out, "epoch_year: %d\n", cfg.EpochYear)
		fmt.Fprintf(out, "bar_width: %g\n", cfg.BarWidth)
		fmt.Fprintf(out, "bar_height: %g\n", cfg.BarHeight)
		fmt.Fprintf(out, "bar_padding: %g\n", cfg.BarPadding)
		fmt.Fprintf(out, "min_bubble_radius: %g\n", cfg.MinBubbleRadius)
		fmt.Fprintf(out, "max_bubble_radius: %g\n", cfg.MaxBubbleRadius)
		fmt.Fprintf(out, "default_mode: %s\n", cfg.DefaultMode)
		if cfg.ZipFipsPath != "" {
			fmt.Fprintf(out, "zipfips_path: %s\n", cfg.ZipFipsPath)
		}
		if cfg.StatesPath != "" {
			fmt.Fprintf(out, "states_path: %s\n", cfg.StatesPath)
		}
		if cfg.CountiesPath != "" {
			fmt.Fprintf(out, "counties_path: %s\n", cfg.CountiesPath)
		}
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		if cfg.RefreshSchedule != "" {
			fmt.Fprintf(out, "refresh_schedule: %s\n", cfg.RefreshSchedule)
		}
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		for _, s := range cfg.CategoryStyles {
			fmt.Fprintf(out, "category_style: %s -> %s (%d)\n", s.Category, s.Color, s.StrokeWidth)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "epoch_year":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for epoch_year: %w", err)
			}
			cfg.EpochYear = i
		case "bar_width", "bar_height", "bar_padding", "min_bubble_radius", "max_bubble_radius":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			switch key {
			case "bar_width":
				cfg.BarWidth = f
			case "bar_height":
				cfg.BarHeight = f
			case "bar_padding":
				cfg.BarPadding = f
			case "min_bubble_radius":
				cfg.MinBubbleRadius = f
			case "max_bubble_radius":
				cfg.MaxBubbleRadius = f
			}
		case "default_mode":
			m, ok := dashboard.ParseMode(val)
			if !ok {
				return fmt.Errorf("invalid default_mode: %s (use state or county)", val)
			}
			cfg.DefaultMode = string(m)
		case "zipfips_path":
			cfg.ZipFipsPath = val
		case "states_path":
			cfg.StatesPath = val
		case "counties_path":
			cfg.CountiesPath = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "refresh_schedule":
			if val != "" {
				if _, err := cron.Parse(val); err != nil {
					return fmt.Errorf("invalid refresh_schedule: %w", err)
				}
			}
			cfg.RefreshSchedule = val
		case "http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "http_timeout_sec":
				cfg.HTTPTimeoutSec = i
			case "retry_max_attempts":
				cfg.RetryMaxAttempts = i
			case "retry_base_delay_ms":
				cfg.RetryBaseDelayMs = i
			case "retry_max_delay_ms":
				cfg.RetryMaxDelayMs = i
			}
		case "log_level":
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			cfg.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
