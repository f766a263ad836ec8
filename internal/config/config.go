package config

import (
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/sketch/internal/codec"
	"github.com/inamate/sketch/internal/engine"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	// Empty keeps scenes in process memory.
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	MinZoom       float64 `envconfig:"SKETCH_MIN_ZOOM" default:"10"`
	MaxZoom       float64 `envconfig:"SKETCH_MAX_ZOOM" default:"400"`
	ZoomStep      float64 `envconfig:"SKETCH_ZOOM_STEP" default:"10"`
	HistoryLimit  int     `envconfig:"SKETCH_HISTORY_LIMIT" default:"100"`
	MaxSceneBytes int64   `envconfig:"SKETCH_MAX_SCENE_BYTES" default:"33554432"`
	MaxImageSide  int     `envconfig:"SKETCH_MAX_IMAGE_SIDE" default:"4096"`
	DecodeWorkers int     `envconfig:"SKETCH_DECODE_WORKERS" default:"4"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Editor returns the session options derived from the configuration. Surface,
// codec and image decoder are left for the caller to attach.
func (c *Config) Editor() engine.Options {
	opts := engine.DefaultOptions()
	opts.Zoom = engine.ZoomLimits{Min: c.MinZoom, Max: c.MaxZoom, Step: c.ZoomStep}
	opts.HistoryLimit = c.HistoryLimit
	return opts
}

// Codec returns the scene codec options.
func (c *Config) Codec() codec.Options {
	return codec.Options{
		MaxBytes:     c.MaxSceneBytes,
		Workers:      c.DecodeWorkers,
		MaxImageSide: c.MaxImageSide,
	}
}

// Origins splits ALLOWED_ORIGINS into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts returns the allowed origins without their scheme, the form the
// websocket origin check matches against.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		out = append(out, o)
	}
	return out
}

// Level maps LOG_LEVEL onto a slog level. Unknown values fall back to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
