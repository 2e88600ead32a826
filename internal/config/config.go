// Package config loads server settings from YAML, applies environment
// overrides and builds the derived runtime values (logger, naming policy,
// annotation style).
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/cropmark-mcp/internal/annotate"
	"github.com/ironsheep/cropmark-mcp/internal/imaging"
)

// EnvLogLevel overrides log_level when set.
const EnvLogLevel = "CROPMARK_LOG_LEVEL"

// EnvOutputDir overrides output_dir when set.
const EnvOutputDir = "CROPMARK_OUTPUT_DIR"

type Naming struct {
	CropPrefix      string `yaml:"crop_prefix"`
	AnnotatedPrefix string `yaml:"annotated_prefix"`
	Extension       string `yaml:"extension"`
	FirstSequence   int    `yaml:"first_sequence"`
}

type Display struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Style struct {
	MarkerColor      string `yaml:"marker_color"`
	MarkerRadius     int    `yaml:"marker_radius"`
	LabelColor       string `yaml:"label_color"`
	LabelOffsetX     int    `yaml:"label_offset_x"`
	LabelOffsetY     int    `yaml:"label_offset_y"`
	PreviewColor     string `yaml:"preview_color"`
	PreviewThickness int    `yaml:"preview_thickness"`
}

// Config holds runtime configuration.
type Config struct {
	OutputDir   string  `yaml:"output_dir"`
	LogLevel    string  `yaml:"log_level"`
	JPEGQuality int     `yaml:"jpeg_quality"`
	OCRLanguage string  `yaml:"ocr_language"`
	Naming      Naming  `yaml:"naming"`
	Display     Display `yaml:"display"`
	Style       Style   `yaml:"style"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		OutputDir:   ".",
		LogLevel:    "info",
		JPEGQuality: 95,
		OCRLanguage: "eng",
		Naming: Naming{
			CropPrefix:      "crop_",
			AnnotatedPrefix: "annotated_",
			Extension:       "png",
			FirstSequence:   1,
		},
		Style: Style{
			MarkerColor:      "#FF0000",
			MarkerRadius:     5,
			LabelColor:       "#FFFFFF",
			LabelOffsetX:     10,
			LabelOffsetY:     -10,
			PreviewColor:     "#FFFF00",
			PreviewThickness: 2,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides
// and validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}

// Validate normalizes out-of-range values and rejects settings that cannot
// work.
func (c *Config) Validate() error {
	def := Default()
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		c.JPEGQuality = def.JPEGQuality
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = def.OCRLanguage
	}
	if c.Naming.FirstSequence < 1 {
		c.Naming.FirstSequence = 1
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("display size must not be negative, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Style.MarkerRadius < 0 {
		c.Style.MarkerRadius = def.Style.MarkerRadius
	}
	if c.Style.PreviewThickness < 1 {
		c.Style.PreviewThickness = def.Style.PreviewThickness
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.AnnotateNaming().Validate(); err != nil {
		return fmt.Errorf("naming: %w", err)
	}
	if _, err := c.AnnotationStyle(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	return nil
}

// AnnotateNaming returns the filename policy.
func (c *Config) AnnotateNaming() annotate.Naming {
	return annotate.Naming{
		CropPrefix:      c.Naming.CropPrefix,
		AnnotatedPrefix: c.Naming.AnnotatedPrefix,
		Extension:       c.Naming.Extension,
	}
}

// AnnotationStyle parses the configured colors into an imaging style.
func (c *Config) AnnotationStyle() (imaging.AnnotationStyle, error) {
	var errs []error
	parse := func(field, hex string) color.RGBA {
		col, err := imaging.ParseHexColor(hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		return col
	}

	style := imaging.AnnotationStyle{
		MarkerColor:      parse("marker_color", c.Style.MarkerColor),
		MarkerRadius:     c.Style.MarkerRadius,
		LabelColor:       parse("label_color", c.Style.LabelColor),
		LabelOffsetX:     c.Style.LabelOffsetX,
		LabelOffsetY:     c.Style.LabelOffsetY,
		PreviewColor:     parse("preview_color", c.Style.PreviewColor),
		PreviewThickness: c.Style.PreviewThickness,
	}
	return style, errors.Join(errs...)
}

// ManagerOptions returns the annotate.Manager options implied by c.
func (c *Config) ManagerOptions() ([]annotate.Option, error) {
	style, err := c.AnnotationStyle()
	if err != nil {
		return nil, err
	}
	return []annotate.Option{
		annotate.WithNaming(c.AnnotateNaming()),
		annotate.WithStyle(style),
		annotate.WithFirstSequence(c.Naming.FirstSequence),
	}, nil
}

// NewLogger builds a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
