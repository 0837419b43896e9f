// -----------------------------------------------------------------------
// Last Modified: Saturday, 17th October 2026 12:10:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/app"
	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/server"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	runOnce      = flag.Bool("once", false, "Run one synchronization pass, print the result and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	common.LoadVersionFromFile()
	if *showVersion || *showVersionV {
		fmt.Printf("OrderSync version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Startup order: config (defaults -> files -> env) -> CLI overrides -> logger -> banner
	if len(configFiles) == 0 {
		if _, err := os.Stat("ordersync.toml"); err == nil {
			configFiles = append(configFiles, "ordersync.toml")
		} else if _, err := os.Stat("deployments/local/ordersync.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/ordersync.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := common.GetLogger()
		tempLogger.Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger := common.InitLogger(config)
	common.PrintBanner(config, logger)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("badger_path", config.Storage.Badger.Path).
		Str("ledger_path", config.Marketplace.LedgerPath).
		Bool("headless", config.Browser.Headless).
		Msg("Resolved configuration")

	if *runOnce {
		// A one-shot run never schedules
		config.Scheduler.Enabled = false
	}

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	if *runOnce {
		code := runSinglePass(application, logger)
		if err := application.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close application")
		}
		os.Exit(code)
	}

	serve(application, logger)
}

// serve runs the HTTP server until SIGINT/SIGTERM
func serve(application *app.App, logger arbor.ILogger) {
	srv := server.New(application)

	common.SafeGo(logger, "http-server", func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}
	})

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", application.Config.Server.Host, application.Config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	// Scheduler first so no new pass starts during shutdown
	if err := application.SchedulerService.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Failed to stop scheduler")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close application")
	}
	logger.Info().Msg("OrderSync stopped")
}

// runSinglePass runs one full pass, interruptible by SIGINT/SIGTERM, and prints the result as JSON
func runSinglePass(application *app.App, logger arbor.ILogger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := application.SyncService.RunFullSynchronizationPass(ctx, models.TriggerManual,
		func(order models.Order, service models.Service, outcome models.ReconcileOutcome) {
			logger.Info().
				Str("order_id", order.OrderID).
				Str("correlation_id", outcome.CorrelationID).
				Str("action", string(outcome.Action)).
				Bool("success", outcome.Success()).
				Msg("Service reconciled")
		})
	if err != nil {
		logger.Error().Err(err).Msg("Synchronization pass failed")
		return 1
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode result")
		return 1
	}
	fmt.Println(string(out))

	if len(result.Errors) > 0 {
		return 2
	}
	return 0
}
