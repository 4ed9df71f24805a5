// Package main implements the engagemark-load binary.
// It shapes the CSV dataset and loads it into both backends without running
// the benchmark battery.
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
		csvPath    string
		dataDir    string
		keyMode    string
		batchSize  int
		workers    int
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&csvPath, "csv", "", "Path to the engagement CSV dataset")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&keyMode, "key-mode", "", "Row key scheme: sequential, hashed")
	flag.IntVar(&batchSize, "batch-size", 0, "Records per write batch")
	flag.IntVar(&workers, "workers", 0, "Concurrent write workers")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "engagemark-load - load the engagement dataset into both backends\n\n")
		fmt.Fprintf(os.Stderr, "Usage: engagemark-load [options]\n\n")
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

	if csvPath != "" {
		cfg.CSVPath = csvPath
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if keyMode != "" {
		cfg.KeyMode = keyMode
	}
	if batchSize > 0 {
		cfg.Loader.BatchSize = batchSize
	}
	if workers > 0 {
		cfg.Loader.Workers = workers
	}
	cfg.Phase = config.PhaseLoad

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
		log.Fatalf("Load failed: %v", err)
	}
}
