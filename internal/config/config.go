// ABOUTME: Daemon configuration with defaults, file loading and validation
// ABOUTME: Config files may be TOML or YAML, chosen by extension
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/engine"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

// Store kinds
const (
	StoreFS   = "fs"
	StoreHTTP = "http"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds the complete daemon configuration
type Config struct {
	SampleRate        int      `toml:"sample_rate" yaml:"sample_rate"`
	Channels          int      `toml:"channels" yaml:"channels"`
	PeriodFrames      int      `toml:"period_frames" yaml:"period_frames"`
	RingMS            int      `toml:"ring_ms" yaml:"ring_ms"`
	RenderInterval    Duration `toml:"render_interval" yaml:"render_interval"`
	RenderBlockFrames int      `toml:"render_block_frames" yaml:"render_block_frames"`
	Tempo             float64  `toml:"tempo" yaml:"tempo"`
	Backend           string   `toml:"backend" yaml:"backend"`

	Store StoreConfig `toml:"store" yaml:"store"`

	Port      int    `toml:"port" yaml:"port"`
	Name      string `toml:"name" yaml:"name"`
	MDNS      bool   `toml:"mdns" yaml:"mdns"`
	ExportDir string `toml:"export_dir" yaml:"export_dir"`
	LogFile   string `toml:"log_file" yaml:"log_file"`
	Debug     bool   `toml:"debug" yaml:"debug"`
}

// StoreConfig selects where content bytes come from
type StoreConfig struct {
	Kind    string   `toml:"kind" yaml:"kind"`
	Dir     string   `toml:"dir" yaml:"dir"`
	URL     string   `toml:"url" yaml:"url"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Duration wraps time.Duration so config files can say "2ms"
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		SampleRate:        48000,
		Channels:          engine.Channels,
		PeriodFrames:      256,
		RingMS:            200,
		RenderInterval:    Duration{2 * time.Millisecond},
		RenderBlockFrames: 256,
		Tempo:             120,
		Backend:           "oto",
		Store: StoreConfig{
			Kind:    StoreFS,
			Dir:     "./content",
			Timeout: Duration{10 * time.Second},
		},
		Port:      8931,
		MDNS:      true,
		ExportDir: "./bounces",
		LogFile:   "timelined.log",
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	return cfg, nil
}

// RingFrames is the capacity of the render ring in frames
func (c Config) RingFrames() int {
	return c.SampleRate * c.RingMS / 1000
}

// Validate rejects configurations the engine cannot run with
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		add("sample_rate %d out of range [8000, 192000]", c.SampleRate)
	}
	if c.Channels != engine.Channels {
		add("channels must be %d, got %d", engine.Channels, c.Channels)
	}
	if c.PeriodFrames <= 0 || c.PeriodFrames > 8192 {
		add("period_frames %d out of range [1, 8192]", c.PeriodFrames)
	}
	if c.RenderBlockFrames <= 0 {
		add("render_block_frames must be positive")
	}
	if c.RingMS <= 0 {
		add("ring_ms must be positive")
	} else if c.SampleRate > 0 && c.RingFrames() < 2*max(c.PeriodFrames, c.RenderBlockFrames) {
		add("ring_ms %d too small for period_frames %d and render_block_frames %d",
			c.RingMS, c.PeriodFrames, c.RenderBlockFrames)
	}
	if c.RenderInterval.Duration <= 0 {
		add("render_interval must be positive")
	} else if c.RenderInterval.Duration > time.Duration(c.RingMS)*time.Millisecond/2 {
		add("render_interval %s longer than half the ring", c.RenderInterval.Duration)
	}
	if !timeline.ValidTempo(c.Tempo) {
		add("tempo %v out of range [%v, %v]", c.Tempo, timeline.MinTempo, timeline.MaxTempo)
	}
	if !slices.Contains(output.Backends(), c.Backend) {
		add("unknown backend %q (have %s)", c.Backend, strings.Join(output.Backends(), ", "))
	}

	switch c.Store.Kind {
	case StoreFS:
		if c.Store.Dir == "" {
			add("store.dir is required for the fs store")
		}
	case StoreHTTP:
		if c.Store.URL == "" {
			add("store.url is required for the http store")
		}
		if c.Store.Timeout.Duration <= 0 {
			add("store.timeout must be positive")
		}
	default:
		add("unknown store.kind %q", c.Store.Kind)
	}

	if c.Port <= 0 || c.Port > 65535 {
		add("port %d out of range", c.Port)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
