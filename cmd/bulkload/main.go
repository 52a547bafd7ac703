// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/bulkload"
	"github.com/poiesic/bulkload/core"
	"github.com/poiesic/bulkload/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "database",
			Usage: "Name of the database to use",
			Value: loader.DefaultConfig().Database,
		},
	}
}

func newApp() *cli.App {
	defaults := loader.DefaultConfig()
	return &cli.App{
		Name:  "bulkload",
		Usage: "Load statement files into a transactional store in batches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "load",
				Usage:     "Load statement files, one statement per line",
				ArgsUsage: "FILES...",
				Action:    loadCommand,
				Flags: append(dbFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of statements committed per transaction",
						Value: defaults.BatchSize,
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Maximum number of transactions in flight",
						Value: defaults.Parallelism,
					},
					&cli.BoolFlag{
						Name:  "sequential",
						Usage: "Commit one batch at a time, in order (--sequential=false overrides a manifest)",
					},
					&cli.StringFlag{
						Name:  "drain",
						Usage: "When to wait for in-flight batches (file, run)",
						Value: string(defaults.DrainEach),
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep loading after a batch fails (--continue-on-error=false overrides a manifest)",
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Attempts per batch, each in a fresh transaction",
						Value: defaults.MaxAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: defaults.RetryDelay,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N statements",
						Value: defaults.ReportInterval,
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "YAML manifest with settings and files; flags override it",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address while loading",
					},
				),
			},
			{
				Name:   "count",
				Usage:  "Print the number of statements in a database",
				Action: countCommand,
				Flags:  dbFlags(),
			},
			{
				Name:   "dump",
				Usage:  "Print the statements of a database in insertion order",
				Action: dumpCommand,
				Flags: append(dbFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of statements to print (0 for all)",
					},
				),
			},
		},
	}
}

// loadConfig builds the run configuration from the manifest, if any, and flags.
func loadConfig(c *cli.Context) (*loader.Config, []string, error) {
	cfg := loader.DefaultConfig()
	var files []string
	if path := c.String("manifest"); path != "" {
		m, err := loader.LoadManifest(path)
		if err != nil {
			return nil, nil, err
		}
		cfg, err = m.Config()
		if err != nil {
			return nil, nil, err
		}
		files = append(files, m.Files...)
	}
	files = append(files, c.Args().Slice()...)

	// Flags left at their defaults do not override the manifest.
	if c.IsSet("database") || c.String("manifest") == "" {
		cfg.Database = c.String("database")
	}
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("parallelism") {
		cfg.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("sequential") {
		cfg.Mode = loader.ModeConcurrent
		if c.Bool("sequential") {
			cfg.Mode = loader.ModeSequential
		}
	}
	if c.IsSet("drain") {
		cfg.DrainEach = loader.DrainPolicy(c.String("drain"))
	}
	if c.IsSet("continue-on-error") {
		cfg.ContinueOnError = c.Bool("continue-on-error")
	}
	if c.IsSet("max-attempts") {
		cfg.MaxAttempts = c.Int("max-attempts")
	}
	if c.IsSet("retry-delay") {
		cfg.RetryDelay = c.Duration("retry-delay")
	}
	if c.IsSet("report-interval") {
		cfg.ReportInterval = c.Int("report-interval")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, files, nil
}

func loadCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	cfg, files, err := loadConfig(c)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files to load")
	}

	db, err := bulkload.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	metrics := loader.NewMetrics()
	if addr := c.String("metrics-addr"); addr != "" {
		shutdown, err := serveMetrics(addr, metrics)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	l, err := db.NewLoader(cfg, loader.WithProgress(c.App.ErrWriter), loader.WithMetrics(metrics))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s (%s)\n", cfg.Database, c.String("db"))
	fmt.Fprintf(c.App.ErrWriter, "Files: %d, batch size: %d, mode: %s", len(files), cfg.BatchSize, cfg.Mode)
	if cfg.Mode == loader.ModeConcurrent {
		fmt.Fprintf(c.App.ErrWriter, ", parallelism: %d, drain: %s", cfg.Parallelism, cfg.DrainEach)
	}
	fmt.Fprintln(c.App.ErrWriter)

	summary, err := l.Load(ctx, files...)
	fmt.Fprintf(c.App.Writer, "Loaded %d statements in %d batches from %d files in %s",
		summary.Statements, summary.Batches, summary.Files, summary.Elapsed.Round(time.Millisecond))
	if summary.Failed > 0 {
		fmt.Fprintf(c.App.Writer, " (%d batches failed)", summary.Failed)
	}
	fmt.Fprintln(c.App.Writer)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	return nil
}

// serveMetrics exposes metrics on addr until the returned function is called.
func serveMetrics(addr string, metrics *loader.Metrics) (func(), error) {
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}, nil
}

func countCommand(c *cli.Context) error {
	db, err := bulkload.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	count, err := db.Count(c.Context, c.String("database"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, count)
	return nil
}

func dumpCommand(c *cli.Context) error {
	db, err := bulkload.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	limit := c.Int("limit")
	printed := 0
	return db.Statements(c.Context, c.String("database"), func(r *core.StatementRecord) bool {
		fmt.Fprintln(c.App.Writer, r.Text)
		printed++
		return limit <= 0 || printed < limit
	})
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
