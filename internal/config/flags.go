// ABOUTME: Command-line overrides for the daemon configuration
// ABOUTME: Only flags given explicitly replace values from the config file
package config

import (
	"flag"
	"fmt"
	"time"
)

// Flags holds the daemon's command-line flags
type Flags struct {
	fs *flag.FlagSet

	path           *string
	sampleRate     *int
	periodFrames   *int
	ringMS         *int
	renderInterval *time.Duration
	tempo          *float64
	backend        *string
	storeDir       *string
	storeURL       *string
	port           *int
	name           *string
	noMDNS         *bool
	exportDir      *string
	logFile        *string
	debug          *bool
}

// RegisterFlags defines the daemon flags on fs
func RegisterFlags(fs *flag.FlagSet) *Flags {
	def := Default()
	return &Flags{
		fs:             fs,
		path:           fs.String("config", "", "Config file (.toml, .yaml or .yml)"),
		sampleRate:     fs.Int("sample-rate", def.SampleRate, "Engine sample rate in Hz"),
		periodFrames:   fs.Int("period", def.PeriodFrames, "Device period in frames"),
		ringMS:         fs.Int("ring-ms", def.RingMS, "Render ring length in milliseconds"),
		renderInterval: fs.Duration("render-interval", def.RenderInterval.Duration, "Render driver wake-up interval"),
		tempo:          fs.Float64("tempo", def.Tempo, "Initial tempo in BPM"),
		backend:        fs.String("backend", def.Backend, "Audio backend (oto, malgo, portaudio, null)"),
		storeDir:       fs.String("content-dir", def.Store.Dir, "Directory content store"),
		storeURL:       fs.String("content-url", "", "HTTP content store base URL (selects the http store)"),
		port:           fs.Int("port", def.Port, "WebSocket control port"),
		name:           fs.String("name", "", "Server friendly name (default: hostname-timeline)"),
		noMDNS:         fs.Bool("no-mdns", false, "Disable mDNS advertisement"),
		exportDir:      fs.String("export-dir", def.ExportDir, "Directory for bounced WAV files"),
		logFile:        fs.String("log-file", def.LogFile, "Log file path"),
		debug:          fs.Bool("debug", false, "Enable debug logging"),
	}
}

// Load builds the configuration: defaults, then the config file when
// -config is given, then any flags set on the command line.
func (f *Flags) Load() (Config, error) {
	cfg := Default()
	if *f.path != "" {
		var err error
		if cfg, err = Load(*f.path); err != nil {
			return cfg, err
		}
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "sample-rate":
			cfg.SampleRate = *f.sampleRate
		case "period":
			cfg.PeriodFrames = *f.periodFrames
		case "ring-ms":
			cfg.RingMS = *f.ringMS
		case "render-interval":
			cfg.RenderInterval.Duration = *f.renderInterval
		case "tempo":
			cfg.Tempo = *f.tempo
		case "backend":
			cfg.Backend = *f.backend
		case "content-dir":
			cfg.Store.Kind = StoreFS
			cfg.Store.Dir = *f.storeDir
		case "content-url":
			cfg.Store.Kind = StoreHTTP
			cfg.Store.URL = *f.storeURL
		case "port":
			cfg.Port = *f.port
		case "name":
			cfg.Name = *f.name
		case "no-mdns":
			cfg.MDNS = !*f.noMDNS
		case "export-dir":
			cfg.ExportDir = *f.exportDir
		case "log-file":
			cfg.LogFile = *f.logFile
		case "debug":
			cfg.Debug = *f.debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
