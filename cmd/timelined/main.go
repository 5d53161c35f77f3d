// ABOUTME: Entry point for the timeline daemon
// ABOUTME: Wires content, engine, audio output and the control server together
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/internal/config"
	"github.com/Resonate-Protocol/resonate-timeline/internal/server"
	"github.com/Resonate-Protocol/resonate-timeline/internal/version"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/ring"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/content"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/engine"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Set up logging (both file and console)
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, f))

	if cfg.Name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		cfg.Name = fmt.Sprintf("%s-timeline", hostname)
	}

	log.Printf("Starting %s: %s on port %d", version.String(), cfg.Name, cfg.Port)
	if cfg.Debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", cfg.LogFile)

	if err := run(cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(cfg config.Config) error {
	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}

	resolver := content.NewResolver(store, decode.DefaultRegistry(), cfg.SampleRate)
	resolver.SetDebug(cfg.Debug)

	tl, err := timeline.New(cfg.Tempo)
	if err != nil {
		return err
	}

	eng, err := engine.New(tl, cfg.SampleRate)
	if err != nil {
		return err
	}

	rb, err := ring.New(cfg.RingFrames(), engine.Channels)
	if err != nil {
		return fmt.Errorf("failed to allocate render ring: %w", err)
	}

	driver, err := engine.NewDriver(eng, rb, cfg.RenderInterval.Duration, cfg.RenderBlockFrames)
	if err != nil {
		return err
	}
	driver.SetDebug(cfg.Debug)

	adapter := output.NewAdapter(rb, cfg.SampleRate)

	out, err := output.New(cfg.Backend)
	if err != nil {
		return err
	}

	driver.Start()
	defer driver.Stop()

	if err := out.Open(cfg.SampleRate, engine.Channels, cfg.PeriodFrames, adapter); err != nil {
		return fmt.Errorf("failed to open %s output: %w", out.Name(), err)
	}
	defer out.Close()
	log.Printf("Audio output: %s %dHz stereo, period %d frames, ring %d frames",
		out.Name(), cfg.SampleRate, cfg.PeriodFrames, rb.Capacity())

	dispatcher := command.NewDispatcher(command.Config{
		Timeline:   tl,
		Resolver:   resolver,
		SampleRate: cfg.SampleRate,
		ExportDir:  cfg.ExportDir,
		Debug:      cfg.Debug,
		Stats: func() command.Stats {
			return command.Stats{
				Output:       adapter.Stats(),
				Engine:       eng.Stats(),
				Driver:       driver.Stats(),
				RingOverflow: rb.Overflow(),
				Content:      resolver.Stats(),
			}
		},
	})
	dispatcher.Start()
	defer dispatcher.Stop()

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Name:       cfg.Name,
		SampleRate: cfg.SampleRate,
		EnableMDNS: cfg.MDNS,
		Debug:      cfg.Debug,
	}, dispatcher)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	err = srv.Start()

	// Regions hold the only references to decoded audio
	dropped := tl.Clear()
	log.Printf("Released %d regions", dropped)

	return err
}

func openStore(cfg config.StoreConfig) (content.Store, error) {
	switch cfg.Kind {
	case config.StoreHTTP:
		log.Printf("Content store: %s", cfg.URL)
		return content.NewHTTPStore(cfg.URL, cfg.Timeout.Duration)
	default:
		log.Printf("Content store: %s", cfg.Dir)
		return content.NewFSStore(cfg.Dir)
	}
}
