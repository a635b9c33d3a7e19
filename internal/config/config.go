package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/PokeMichele/lumo/internal/compositor"
	"github.com/PokeMichele/lumo/internal/gesture"
	"github.com/PokeMichele/lumo/internal/log"
	"github.com/PokeMichele/lumo/internal/playback"
	"github.com/PokeMichele/lumo/internal/timeline"
	"github.com/PokeMichele/lumo/internal/timeline/snap"
)

// ErrInvalidConfig is returned when a loaded file contains values the
// components would refuse.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable the editor reads at startup.
type Config struct {
	Timeline TimelineConfig `toml:"timeline"`
	Snap     SnapConfig     `toml:"snap"`
	Layout   LayoutConfig   `toml:"layout"`
	Playback PlaybackConfig `toml:"playback"`
	Preview  PreviewConfig  `toml:"preview"`
	History  HistoryConfig  `toml:"history"`
	Log      LogConfig      `toml:"log"`
}

// TimelineConfig tunes the timeline model.
type TimelineConfig struct {
	// Epsilon is the placement jitter tolerance in seconds.
	Epsilon float64 `toml:"epsilon"`
}

// SnapConfig tunes the magnetic snap resolver.
type SnapConfig struct {
	// ThresholdPx is the snap window in layout pixels.
	ThresholdPx float64 `toml:"threshold_px"`

	// MinDuration is the resize floor in seconds.
	MinDuration float64 `toml:"min_duration"`

	// SearchStep and SearchRadius tune the outward search for a legal
	// position, both in seconds.
	SearchStep   float64 `toml:"search_step"`
	SearchRadius float64 `toml:"search_radius"`
}

// LayoutConfig tunes the timeline view geometry in layout pixels. The
// terminal frontend draws one layout pixel per cell, so the defaults are
// cell sized.
type LayoutConfig struct {
	PixelsPerSecond float64 `toml:"pixels_per_second"`
	TrackHeight     int     `toml:"track_height"`
	RulerHeight     int     `toml:"ruler_height"`
	GutterWidth     int     `toml:"gutter_width"`
	EdgeGrabWidth   int     `toml:"edge_grab_width"`
}

// PlaybackConfig tunes the playback clock and sync engine.
type PlaybackConfig struct {
	// SyncTolerance is how far in seconds a handle may drift before it
	// is reseeked.
	SyncTolerance float64 `toml:"sync_tolerance"`

	// MaxFPS caps how often a fresh frame is composed.
	MaxFPS float64 `toml:"max_fps"`

	// MasterVolume is the initial master volume in percent, 0 to 100.
	MasterVolume float64 `toml:"master_volume"`
}

// PreviewConfig tunes the preview stage.
type PreviewConfig struct {
	// Aspect is the stage aspect ratio in "16:9" form.
	Aspect string `toml:"aspect"`

	// Width and Height are the initial viewport in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// HistoryConfig tunes the undo stack.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// LogConfig tunes diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination, empty for stderr.
	File string `toml:"file"`
}

// Default returns the built-in configuration. The layout and snap
// sections are sized for the terminal frontend, the rest mirror the
// component defaults.
func Default() *Config {
	return &Config{
		Timeline: TimelineConfig{
			Epsilon: timeline.DefaultEpsilon,
		},
		Snap: SnapConfig{
			ThresholdPx:  2,
			MinDuration:  snap.DefaultMinDuration,
			SearchStep:   snap.DefaultSearchStep,
			SearchRadius: snap.DefaultSearchRadius,
		},
		Layout: LayoutConfig{
			PixelsPerSecond: 5,
			TrackHeight:     2,
			RulerHeight:     1,
			GutterWidth:     10,
			// Two pixels so the grab zone reaches the last cell inside
			// the item, a one cell zone sits entirely past its end.
			EdgeGrabWidth: 2,
		},
		Playback: PlaybackConfig{
			SyncTolerance: playback.DefaultSyncTolerance,
			MaxFPS:        compositor.DefaultMaxHz,
			MasterVolume:  playback.DefaultMasterVolume,
		},
		Preview: PreviewConfig{
			Aspect: "16:9",
			Width:  960,
			Height: 540,
		},
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a config file and overlays it on the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field against the range its component accepts.
func (c *Config) Validate() error {
	fail := func(field, rule string) error {
		return fmt.Errorf("%w: %s must be %s", ErrInvalidConfig, field, rule)
	}

	if c.Timeline.Epsilon <= 0 {
		return fail("timeline.epsilon", "positive")
	}
	if c.Snap.ThresholdPx < 0 {
		return fail("snap.threshold_px", "non-negative")
	}
	if c.Snap.MinDuration <= 0 {
		return fail("snap.min_duration", "positive")
	}
	if c.Snap.SearchStep <= 0 {
		return fail("snap.search_step", "positive")
	}
	if c.Snap.SearchRadius <= 0 {
		return fail("snap.search_radius", "positive")
	}
	if c.Layout.PixelsPerSecond <= 0 {
		return fail("layout.pixels_per_second", "positive")
	}
	if c.Layout.TrackHeight <= 0 {
		return fail("layout.track_height", "positive")
	}
	if c.Layout.RulerHeight < 0 {
		return fail("layout.ruler_height", "non-negative")
	}
	if c.Layout.GutterWidth < 0 {
		return fail("layout.gutter_width", "non-negative")
	}
	if c.Layout.EdgeGrabWidth < 0 {
		return fail("layout.edge_grab_width", "non-negative")
	}
	if c.Playback.SyncTolerance <= 0 {
		return fail("playback.sync_tolerance", "positive")
	}
	if c.Playback.MaxFPS <= 0 {
		return fail("playback.max_fps", "positive")
	}
	if c.Playback.MasterVolume < 0 || c.Playback.MasterVolume > 100 {
		return fail("playback.master_volume", "between 0 and 100")
	}
	if _, err := compositor.ParseAspect(c.Preview.Aspect); err != nil {
		return fail("preview.aspect", `in "W:H" form`)
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fail("preview dimensions", "positive")
	}
	if c.History.MaxEntries <= 0 {
		return fail("history.max_entries", "positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fail("log.level", "one of debug, info, warn, error")
	}
	return nil
}

// GestureLayout returns the layout section as the gesture package's type.
func (c *Config) GestureLayout() gesture.Layout {
	return gesture.Layout{
		PixelsPerSecond: c.Layout.PixelsPerSecond,
		TrackHeight:     c.Layout.TrackHeight,
		RulerHeight:     c.Layout.RulerHeight,
		GutterWidth:     c.Layout.GutterWidth,
		EdgeGrabWidth:   c.Layout.EdgeGrabWidth,
	}
}

// SnapOptions returns the snap section as resolver options.
func (c *Config) SnapOptions() []snap.Option {
	return []snap.Option{
		snap.WithThreshold(c.Snap.ThresholdPx),
		snap.WithMinDuration(c.Snap.MinDuration),
		snap.WithSearch(c.Snap.SearchStep, c.Snap.SearchRadius),
	}
}

// PreviewAspect returns the parsed preview aspect ratio. Validate has
// already checked the form, an unparsable value here falls back to 16:9.
func (c *Config) PreviewAspect() compositor.Aspect {
	a, err := compositor.ParseAspect(c.Preview.Aspect)
	if err != nil {
		return compositor.Aspect16x9
	}
	return a
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	return log.ParseLevel(c.Log.Level)
}
