package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/api"
	"github.com/tillpoint/printbridge/internal/bluetooth"
	"github.com/tillpoint/printbridge/internal/config"
	"github.com/tillpoint/printbridge/internal/discovery"
	"github.com/tillpoint/printbridge/internal/logging"
	"github.com/tillpoint/printbridge/internal/printer"
	"github.com/tillpoint/printbridge/internal/probe"
	"github.com/tillpoint/printbridge/internal/receipt"
	"github.com/tillpoint/printbridge/internal/registry"
	"github.com/tillpoint/printbridge/internal/topology"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "printbridge.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		// Logger is not up yet, so report directly.
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", configPath, err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		os.Exit(1)
	}
	defer logging.Sync()

	logging.Info("printbridge starting",
		zap.String("version", Version),
		zap.String("os", runtime.GOOS),
		zap.Bool("bluetooth", cfg.Capabilities.SupportsBluetooth),
	)

	reg, err := registry.New(cfg.RegistryFile)
	if err != nil {
		logging.Fatal("failed to open printer registry", zap.Error(err))
	}

	prefixes := cfg.Scan.Subnets
	if len(prefixes) == 0 {
		prefixes = topology.SubnetPrefixes()
	}

	prober := probe.New(cfg.Capabilities)
	scheduler := discovery.NewScheduler(prober, topology.PortCandidates(), cfg.Scan.BatchSize, cfg.BatchDelay())

	var backend bluetooth.Backend
	if cfg.Capabilities.SupportsBluetooth {
		backend = bluetooth.NewPlatformBackend()
	}
	enum := bluetooth.NewEnumerator(backend, cfg.Capabilities)

	scanner := discovery.NewScanner(scheduler, enum, prefixes, topology.HostSuffixes(), cfg.CacheTTL())

	manager := printer.NewManager(cfg.Capabilities)
	defer manager.Disconnect()

	encoder := receipt.NewEncoder(receipt.FeeSettings{CardFeePercent: cfg.CardFee})

	server := api.NewServer(scanner, manager, reg, encoder)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(cfg.Listen)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logging.Error("api server stopped", zap.Error(err))
	}
}
