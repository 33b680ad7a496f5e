// Command outliner extracts document outlines. In batch mode it
// processes every document in the input directory and writes one JSON
// per document; with -serve it exposes the engine over HTTP instead.
//
// Exit codes: 0 when every document succeeded, 2 when at least one
// document fell back to an empty extraction (soft failure), 1 for driver
// errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brunobiangulo/outliner"
	"github.com/brunobiangulo/outliner/api"
	"github.com/brunobiangulo/outliner/batch"
)

const softFailureExit = 2

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	inDir := flag.String("in", "input", "Input directory (batch mode)")
	outDir := flag.String("out", "output", "Output directory (batch mode)")
	serve := flag.Bool("serve", false, "Run the HTTP API instead of a batch")
	addr := flag.String("addr", ":8080", "Listen address (with -serve)")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := outliner.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = outliner.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}

	// Environment overrides.
	if v := os.Getenv("OUTLINER_ACCEPTANCE_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AcceptanceThreshold = t
		}
	}
	if v := os.Getenv("OUTLINER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("OUTLINER_DOCUMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DocumentTimeout = outliner.Duration(d)
		}
	}

	engine, err := outliner.New(cfg)
	if err != nil {
		slog.Error("building engine", "error", err)
		os.Exit(1)
	}

	if *serve {
		runServer(engine, *addr)
		return
	}
	os.Exit(runBatch(engine, *inDir, *outDir))
}

func runBatch(engine *outliner.Engine, inDir, outDir string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputs, err := batch.ListInputs(inDir)
	if err != nil {
		slog.Error("listing inputs", "error", err)
		return 1
	}
	if len(inputs) == 0 {
		slog.Info("no documents found", "dir", inDir)
		return 0
	}

	runner := batch.NewRunner(engine, slog.Default(), engine.Config().Workers)
	summary, err := runner.Run(ctx, inputs, outDir)
	if err != nil {
		slog.Error("batch failed", "error", err)
		return 1
	}

	slog.Info("batch complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"fell_back", summary.FellBack,
	)
	for _, r := range summary.Results {
		if r.FellBack {
			fmt.Fprintf(os.Stderr, "fallback: %s (%v)\n", r.Input, r.Err)
		}
	}

	if summary.FellBack > 0 {
		return softFailureExit
	}
	return 0
}

func runServer(engine *outliner.Engine, addr string) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(engine, slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
