package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/api"
	"github.com/carescan/carescan/internal/config"
	"github.com/carescan/carescan/internal/doctors"
	"github.com/carescan/carescan/internal/maintenance"
	"github.com/carescan/carescan/internal/report"
	"github.com/carescan/carescan/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	port       = flag.Int("port", 0, "Override server port")
	version    = "dev"
)

func main() {
	// Handle subcommands before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("CareScan version %s\n", version)
			return
		case "status":
			handleStatusCommand(os.Args[2:])
			return
		case "export":
			handleExportCommand(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting CareScan", zap.String("version", version))

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	st, err := store.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize record store", zap.Error(err))
	}
	defer st.Close()

	dir, err := doctors.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to open doctor directory", zap.Error(err))
	}
	defer dir.Close()

	var runner *maintenance.Runner
	if cfg.Maintenance.Enabled {
		runner = maintenance.NewRunner(cfg.Maintenance, st, logger)
		if err := runner.Start(); err != nil {
			logger.Fatal("Failed to start maintenance runner", zap.Error(err))
		}
	}

	server := api.New(cfg, st, dir, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logger.Info("Shutting down")
		if runner != nil {
			runner.Stop()
		}
		if err := server.Shutdown(); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
		close(done)
	}()

	if err := server.Start(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	<-done
}

func handleStatusCommand(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	statusConfig := fs.String("config", "", "Path to config file")
	statusData := fs.String("data", "", "Path to data directory")
	_ = fs.Parse(args)

	cfg, st := openStore(*statusConfig, *statusData)
	defer st.Close()

	fmt.Println("CareScan status")
	fmt.Printf("  Data dir:      %s\n", cfg.Storage.DataDir)
	fmt.Printf("  Predictions:   %d\n", len(st.ListPredictions()))
	fmt.Printf("  Medications:   %d\n", len(st.ListMedications()))
	fmt.Printf("  Contacts:      %d\n", len(st.ListContacts()))
}

func handleExportCommand(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	exportConfig := fs.String("config", "", "Path to config file")
	exportData := fs.String("data", "", "Path to data directory")
	outPath := fs.String("o", "", "Output file (defaults to the report filename)")
	stdout := fs.Bool("stdout", false, "Write the report to stdout")
	_ = fs.Parse(args)

	_, st := openStore(*exportConfig, *exportData)
	defer st.Close()

	r := report.Generate(st.ListPredictions(), time.Now())

	if *stdout {
		fmt.Println(r.Text())
		return
	}

	path := *outPath
	if path == "" {
		path = r.Filename()
	}
	if err := os.WriteFile(path, []byte(r.Text()), 0644); err != nil {
		fmt.Printf("Error: failed to write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s (%d records)\n", path, r.Records)
}

func openStore(configPath, dataDir string) (*config.Config, *store.Store) {
	logger := zap.NewNop()

	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		fmt.Printf("Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.New(cfg, logger)
	if err != nil {
		fmt.Printf("Error: failed to open record store: %v\n", err)
		os.Exit(1)
	}
	return cfg, st
}

func printHelp() {
	fmt.Println(`CareScan - health tracking service

Usage:
  carescan [flags]            Run the API server
  carescan status [flags]     Show record counts
  carescan export [flags]     Export the health report
  carescan version            Print version

Flags:
  -config string   Path to config file
  -data string     Path to data directory
  -port int        Override server port

Export flags:
  -o string        Output file (defaults to the report filename)
  -stdout          Write the report to stdout`)
}
