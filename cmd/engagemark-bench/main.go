// Package main implements the engagemark-bench binary.
// It runs the benchmark battery against previously loaded data and writes
// the comparison report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/engagemark/engagemark/internal/app"
	"github.com/engagemark/engagemark/internal/config"
)

func main() {
	var (
		configFile string
		dataDir    string
		scanLimit  int
		upload     bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.IntVar(&scanLimit, "scan-limit", 0, "Record limit for column store scan operations")
	flag.BoolVar(&upload, "upload", false, "Upload report files to object storage")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "engagemark-bench - benchmark both backends over loaded data\n\n")
		fmt.Fprintf(os.Stderr, "Usage: engagemark-bench [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if scanLimit > 0 {
		cfg.Bench.ScanLimit = scanLimit
	}
	if upload {
		cfg.Report.Upload = true
	}
	cfg.Phase = config.PhaseBench

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}
}
