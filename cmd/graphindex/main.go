package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"graphindex/internal/core/app"
	"graphindex/internal/core/config"
	"graphindex/internal/reindex"
	"graphindex/internal/shared/observability"
)

var (
	configPath   = flag.String("config", "", "Path to TOML config file (optional; defaults apply without one)")
	profile      = flag.String("profile", "", "Build profile of the external tools, usually 'release' or 'debug'")
	force        = flag.Bool("force", false, "Regenerate files even if they already exist. Implies -ef")
	ef           = flag.Bool("ef", false, "Regenerate .ef files even if they already exist")
	watch        = flag.Bool("watch", false, "Stay resident and reindex when base graph files change")
	history      = flag.Bool("history", false, "Print recent reindex runs for the graph and exit (requires journal)")
	historyLimit = flag.Int("history-limit", 10, "Number of journal entries to print with -history")
	metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus /metrics and /health on this address")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: graphindex [flags] <graph-prefix>\n\n")
	fmt.Fprintf(os.Stderr, "Reindex a compressed graph to the latest format. <graph-prefix> is the\n")
	fmt.Fprintf(os.Stderr, "graph folder followed by the graph prefix, e.g. \"graph_folder/graph\".\n\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("graphindex v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	prefix := flag.Arg(0)

	// Load config
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Default()
	}
	if *profile != "" {
		cfg.Profile = *profile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer application.Close(context.Background())

	if *history {
		if err := printHistory(ctx, application, prefix, *historyLimit); err != nil {
			slog.Error("failed to read run journal", "error", err)
			os.Exit(1)
		}
		return
	}

	if *metricsAddr != "" {
		server := app.NewObservabilityServer(*metricsAddr, app.NewHealthService(application))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer server.Stop(context.Background())
	}

	flags := reindex.Flags{Force: *force, EF: *ef}

	if *watch {
		err = application.WatchAndReindex(ctx, prefix, flags)
		if err == context.Canceled {
			err = nil
		}
	} else {
		err = application.Reindex(ctx, prefix, flags)
	}
	if err != nil {
		slog.Error("reindex failed", "error", err)
		os.Exit(1)
	}
}

func printHistory(ctx context.Context, application *app.App, prefix string, limit int) error {
	runs, err := application.History(ctx, prefix, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  force=%v ef=%v  %s\n",
			run.Started.Local().Format(time.RFC3339), run.Status, run.Force, run.EF, run.Prefix)
		for _, step := range run.Steps {
			line := fmt.Sprintf("  %-12s %s  %s", step.Artifact, step.Action, step.Duration.Round(time.Millisecond))
			if step.Error != "" {
				line += "  " + step.Error
			}
			fmt.Println(line)
		}
	}
	return nil
}
