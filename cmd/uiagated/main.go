// uiagated - accessibility event rate-limiting daemon
//
//	uiagated run             Bridge an event source through the limiter
//	uiagated storm           One-shot synthetic burst, print coalescing stats
//	uiagated journal         Summarize journalled flush statistics
//	uiagated help            Show usage
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uiagate/internal/config"
	"uiagate/internal/journal"
	"uiagate/internal/limiter"
	"uiagate/internal/logging"
	"uiagate/internal/metrics"
	"uiagate/internal/source"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "storm":
		cmdStorm(os.Args[2:])
	case "journal":
		cmdJournal(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`uiagated - accessibility event rate limiter

USAGE:
    uiagated <command> [options]

COMMANDS:
    run        Bridge the configured event source through the rate limiter
    storm      Run a one-shot synthetic burst and print coalescing stats
    journal    Summarize journalled flush statistics
    help       Show this help message

The limiter buffers accessibility events, keeps only the latest record per
(element, event) class, and announces the survivors in coalesced batches.`)
}

// loadConfig reads the config at path (or the platform default) and builds
// the logger it asks for.
func loadConfig(path string) (*config.Config, *logging.Logger, error) {
	if path == "" {
		path = config.PlatformConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(&logging.Config{
		Level:     logging.ParseLevel(cfg.Logging.Level),
		Format:    logging.ParseFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		AddSource: cfg.Logging.AddSource,
		Component: "uiagated",
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	fs.Parse(args)

	cfg, log, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	// Hot-reload only reports; limiter and source settings apply at the
	// next start.
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.PlatformConfigPath()
	}
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		loader := config.NewLoader(cfgPath)
		loader.OnChange(func(next *config.Config) {
			log.Info("config file changed; restart to apply", "path", cfgPath,
				"coalesce_delay_ms", next.Limiter.CoalesceDelayMs)
		})
		if errCh, werr := loader.Watch(); werr == nil {
			defer loader.Close()
			go func() {
				for err := range errCh {
					log.Warn("config watch", "err", err)
				}
			}()
		} else {
			log.Warn("config watch unavailable", "err", werr)
		}
	}

	registry := metrics.Default()
	if cfg.Metrics.Enabled {
		srv := registry.Serve(cfg.Metrics.Listen)
		defer srv.Close()
		log.Info("metrics endpoint up", "listen", cfg.Metrics.Listen)
	}

	var onFlush func(limiter.FlushStats)
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "uiagated: open journal: %v\n", err)
			os.Exit(1)
		}
		defer j.Close()
		jlog := log.WithComponent("journal")
		onFlush = func(stats limiter.FlushStats) {
			if err := j.Record(time.Now(), stats); err != nil {
				jlog.Warn("journal write failed", "err", err)
			}
		}
		log.Info("journalling flush statistics", "path", cfg.Journal.Path)
	}

	if warn := cfg.Limiter.MaxBatchWarn; warn > 0 {
		inner := onFlush
		blog := log.WithComponent("limiter")
		onFlush = func(stats limiter.FlushStats) {
			if stats.Records > warn {
				blog.Warn("flush batch exceeded threshold", "records", stats.Records, "threshold", warn)
			}
			if inner != nil {
				inner(stats)
			}
		}
	}

	upstream := newAnnouncer(log.WithComponent("announcer"))

	var sink *limiter.RateLimitedSink
	sched := newFlushScheduler(func() { sink.Flush() })
	sink, err = limiter.New(upstream, sched.notify, &limiter.Options{
		CoalesceDelay: cfg.Limiter.CoalesceDelay(),
		Logger:        log.WithComponent("limiter"),
		Metrics:       metrics.NewLimiterMetrics(registry),
		OnFlush:       onFlush,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: %v\n", err)
		os.Exit(1)
	}

	var src source.Source
	switch cfg.Source.Kind {
	case "atspi":
		src = source.NewATSPI()
	default:
		src = source.NewSynthetic(source.SyntheticConfig{
			Elements:      cfg.Source.Elements,
			EventsPerSec:  cfg.Source.EventsPerSec,
			PropertyRatio: cfg.Source.PropertyRatio,
			FocusRatio:    cfg.Source.FocusRatio,
			Duration:      time.Duration(cfg.Source.DurationSec) * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("bridging source through limiter",
		"source", src.Name(), "coalesce_delay", cfg.Limiter.CoalesceDelay())
	if err := src.Run(ctx, sink); err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: source: %v\n", err)
		sched.stop()
		os.Exit(1)
	}
	sched.stop()
	log.Info("shut down cleanly")
}

func cmdStorm(args []string) {
	fs := flag.NewFlagSet("storm", flag.ExitOnError)
	elements := fs.Int("elements", 8, "simulated element pool size")
	rate := fs.Int("rate", 2000, "events per second")
	duration := fs.Duration("duration", 3*time.Second, "storm duration")
	delay := fs.Duration("delay", limiter.DefaultCoalesceDelay, "coalescing window")
	seed := fs.Int64("seed", 0, "storm seed (0 = random)")
	fs.Parse(args)

	log, err := logging.New(&logging.Config{
		Level:     logging.LevelWarn,
		Component: "storm",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	registry := metrics.NewRegistry()
	m := metrics.NewLimiterMetrics(registry)
	upstream := &countingUpstream{}

	var sink *limiter.RateLimitedSink
	sched := newFlushScheduler(func() { sink.Flush() })
	sink, err = limiter.New(upstream, sched.notify, &limiter.Options{
		CoalesceDelay: *delay,
		Logger:        log.Logger,
		Metrics:       m,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: %v\n", err)
		os.Exit(1)
	}

	src := source.NewSynthetic(source.SyntheticConfig{
		Elements:      *elements,
		EventsPerSec:  *rate,
		PropertyRatio: 60,
		FocusRatio:    2,
		Duration:      *duration,
		Seed:          *seed,
	})

	start := time.Now()
	if err := src.Run(context.Background(), sink); err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: storm: %v\n", err)
		os.Exit(1)
	}
	sched.stop()
	elapsed := time.Since(start)

	queued := m.EventsQueuedTotal.Value()
	emitted := upstream.total()
	suppressed := uint64(0)
	if queued > emitted {
		suppressed = queued - emitted
	}
	fmt.Printf("storm complete in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  intakes:    %d\n", queued)
	fmt.Printf("  announced:  %d\n", emitted)
	fmt.Printf("  suppressed: %d (%.1f%%)\n", suppressed, 100*float64(suppressed)/float64(max(queued, 1)))
	fmt.Printf("  flushes:    %d\n", m.FlushesTotal.Value())
}

func cmdJournal(args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	since := fs.Duration("since", 24*time.Hour, "summarize flushes newer than this")
	fs.Parse(args)

	cfg, log, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: open journal: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	s, err := j.Summarize(time.Now().Add(-*since))
	if err != nil {
		fmt.Fprintf(os.Stderr, "uiagated: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("flushes:         %d\n", s.Flushes)
	fmt.Printf("records emitted: %d\n", s.Records)
	fmt.Printf("coalesced away:  %d\n", s.Coalesced)
	fmt.Printf("failures:        %d\n", s.Failures)
	fmt.Printf("mean batch size: %.1f\n", s.MeanBatchSize)
	fmt.Printf("mean dispatch:   %v\n", s.MeanDuration.Round(time.Microsecond))
}
