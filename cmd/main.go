// Command assetwatch polls balances and prices from the configured
// exchanges and persists valued snapshots into a history database.
//
// Usage:
//
//	assetwatch --config config.yaml
//	assetwatch --setup   (interactive configuration wizard)
//
// API credentials may be set in the config file or via environment
// variables, e.g. BINANCE_API_KEY / BINANCE_API_SECRET.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/assetwatch/config"
	"github.com/vadiminshakov/assetwatch/internal/exchange"
	"github.com/vadiminshakov/assetwatch/internal/logging"
	"github.com/vadiminshakov/assetwatch/internal/setup"
	"github.com/vadiminshakov/assetwatch/internal/storage/history"
	"github.com/vadiminshakov/assetwatch/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to yaml config")
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")
	flag.Parse()

	if *runSetup {
		if err := setup.RunWizard(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := history.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open history store", zap.Error(err))
	}
	defer store.Close()

	exchanges := make([]exchange.Exchange, 0, len(cfg.Exchanges))
	for _, ec := range cfg.Exchanges {
		ex, err := exchange.FromConfig(ec)
		if err != nil {
			logger.Fatal("failed to build exchange adapter",
				zap.String("exchange", ec.Name), zap.Error(err))
		}
		exchanges = append(exchanges, ex)
	}

	t := tracker.New(cfg.UserID, cfg.Interval, exchanges, store, logger)
	if err := t.Start(); err != nil {
		logger.Fatal("failed to start tracker", zap.Error(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	t.Stop()
}
