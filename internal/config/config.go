package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/julian-george/dali-datascience-app/internal/dashboard"
)

// Global configuration structure.
type Global struct {
	EpochYear       int     `mapstructure:"epoch_year" yaml:"epoch_year" validate:"gte=1900,lte=2100"`
	BarWidth        float64 `mapstructure:"bar_width" yaml:"bar_width" validate:"gt=0"`
	BarHeight       float64 `mapstructure:"bar_height" yaml:"bar_height" validate:"gt=0"`
	BarPadding      float64 `mapstructure:"bar_padding" yaml:"bar_padding" validate:"gte=0,lt=1"`
	MinBubbleRadius float64 `mapstructure:"min_bubble_radius" yaml:"min_bubble_radius" validate:"gte=0"`
	MaxBubbleRadius float64 `mapstructure:"max_bubble_radius" yaml:"max_bubble_radius" validate:"gtefield=MinBubbleRadius"`
	DefaultMode     string  `mapstructure:"default_mode" yaml:"default_mode" validate:"oneof=STATE COUNTY"`

	// Static lookup tables
	ZipFipsPath  string `mapstructure:"zipfips_path" yaml:"zipfips_path"`
	StatesPath   string `mapstructure:"states_path" yaml:"states_path"`
	CountiesPath string `mapstructure:"counties_path" yaml:"counties_path"`

	// Server
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required"`
	RefreshSchedule string `mapstructure:"refresh_schedule" yaml:"refresh_schedule"`

	// HTTP/Retry configuration for remote datasets
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec" validate:"gt=0"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts" validate:"gte=1"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms" validate:"gte=0"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms" validate:"gtefield=RetryBaseDelayMs"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// Viper lowercases map keys, so styles are a list keyed by Category.
	CategoryStyles []CategoryStyle `mapstructure:"category_styles" yaml:"category_styles" validate:"dive"`
}

// CategoryStyle assigns a line style to a category.
type CategoryStyle struct {
	Category    string `mapstructure:"category" yaml:"category" validate:"required"`
	Title       string `mapstructure:"title" yaml:"title"`
	Color       string `mapstructure:"color" yaml:"color" validate:"required"`
	StrokeWidth int    `mapstructure:"stroke_width" yaml:"stroke_width" validate:"gte=0"`
}

// DefaultCategoryStyles lists the built-in line styles in a stable order.
func DefaultCategoryStyles() []CategoryStyle {
	defs := dashboard.DefaultStyles()
	out := make([]CategoryStyle, 0, len(defs))
	for _, cat := range []string{"Furniture", "Technology", "Office Supplies"} {
		st := defs[cat]
		out = append(out, CategoryStyle{Category: cat, Title: st.Title, Color: st.Color, StrokeWidth: st.StrokeWidth})
	}
	return out
}

var validate = validator.New()

// Validate checks value ranges.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Layout is the chart geometry the configuration describes.
func (c *Global) Layout() dashboard.Layout {
	l := dashboard.DefaultLayout()
	l.Width, l.Height, l.BarPadding = c.BarWidth, c.BarHeight, c.BarPadding
	if len(c.CategoryStyles) > 0 {
		l.Styles = make(map[string]dashboard.SeriesStyle, len(c.CategoryStyles))
		for _, cs := range c.CategoryStyles {
			title := cs.Title
			if title == "" {
				title = cs.Category
			}
			l.Styles[cs.Category] = dashboard.SeriesStyle{Title: title, Color: cs.Color, StrokeWidth: cs.StrokeWidth}
		}
	}
	return l
}

// Mode is the configured initial map mode.
func (c *Global) Mode() dashboard.Mode {
	if m, ok := dashboard.ParseMode(c.DefaultMode); ok {
		return m
	}
	return dashboard.DefaultMode
}

// HTTPTimeout is the per-request timeout for remote datasets.
func (c *Global) HTTPTimeout() time.Duration { return time.Duration(c.HTTPTimeoutSec) * time.Second }

// Dir returns ~/.datavis.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datavis"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datavis/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATAVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Chart defaults
	v.SetDefault("epoch_year", 2013)
	v.SetDefault("bar_width", 1080)
	v.SetDefault("bar_height", 640)
	v.SetDefault("bar_padding", 0.1)
	v.SetDefault("min_bubble_radius", 2)
	v.SetDefault("max_bubble_radius", 25)
	v.SetDefault("default_mode", string(dashboard.DefaultMode))
	v.SetDefault("zipfips_path", "")
	v.SetDefault("states_path", "")
	v.SetDefault("counties_path", "")
	// Server defaults
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("refresh_schedule", "")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DefaultMode = strings.ToUpper(strings.TrimSpace(c.DefaultMode))
	if len(c.CategoryStyles) == 0 {
		c.CategoryStyles = DefaultCategoryStyles()
	}
	return &c, nil
}
