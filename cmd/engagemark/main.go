// Package main implements the unified engagemark binary.
// It can run the full pipeline (load both backends, benchmark, report) or an
// individual phase based on the --phase flag.
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

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		csvPath     string
		dataDir     string
		phase       string
		keyMode     string
		upload      bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&csvPath, "csv", "", "Path to the engagement CSV dataset")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&phase, "phase", "", "Phase to run: all, load, bench")
	flag.StringVar(&keyMode, "key-mode", "", "Row key scheme: sequential, hashed")
	flag.BoolVar(&upload, "upload", false, "Upload report files to object storage")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Engagemark - Column store vs SQLite benchmark for engagement data\n\n")
		fmt.Fprintf(os.Stderr, "Usage: engagemark [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  engagemark --csv ./social_media_engagement_data.csv\n")
		fmt.Fprintf(os.Stderr, "  engagemark --phase load --key-mode hashed --data-dir /data/engagemark\n")
		fmt.Fprintf(os.Stderr, "  engagemark --config /etc/engagemark/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  ENGAGEMARK_PHASE          Phase to run (all, load, bench)\n")
		fmt.Fprintf(os.Stderr, "  ENGAGEMARK_CSV_PATH       Path to the CSV dataset\n")
		fmt.Fprintf(os.Stderr, "  ENGAGEMARK_DATA_DIR       Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  ENGAGEMARK_KEY_MODE       Row key scheme (sequential, hashed)\n")
		fmt.Fprintf(os.Stderr, "  ENGAGEMARK_STORAGE_TYPE   Storage type (local, s3)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("engagemark version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, csvPath, dataDir, phase, keyMode, upload)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	printBanner(cfg)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Interrupt cancels the run and lets in-flight batches drain.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, csvPath, dataDir, phase, keyMode string, upload bool) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	// Command line flags take highest priority.
	if csvPath != "" {
		cfg.CSVPath = csvPath
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if phase != "" {
		cfg.Phase = config.Phase(phase)
	}
	if keyMode != "" {
		cfg.KeyMode = keyMode
	}
	if upload {
		cfg.Report.Upload = true
	}

	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("Engagemark starting")
	log.Printf("Configuration:")
	log.Printf("  Phase:    %s", cfg.Phase)
	log.Printf("  CSV:      %s", cfg.CSVPath)
	log.Printf("  Data Dir: %s", cfg.DataDir)
	log.Printf("  Key Mode: %s", cfg.KeyMode)
	log.Printf("  Storage:  %s", cfg.Storage.Type)
}
