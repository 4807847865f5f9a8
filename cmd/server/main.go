package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/mcpkit/combined-mcp-server/internal/application"
	"github.com/mcpkit/combined-mcp-server/internal/config"
	"github.com/mcpkit/combined-mcp-server/internal/logging"
)

// exitConfig is the distinguished exit status for invalid configuration
// (sysexits EX_CONFIG), so supervisors can tell it apart from a crash.
const exitConfig = 78

const shutdownGracePeriod = 10 * time.Second

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("combined-mcp-server", "Combined Google search and Wikipedia lookup server")
	envFile := kingpinApp.Flag("env-file", "Path to a KEY=VALUE environment definition file").String()
	configFile := kingpinApp.Flag("config", "Path to a YAML settings file").String()
	port := kingpinApp.Flag("port", "Port the server listens on").Default("-1").Int()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.Overrides{
		EnvFile:    *envFile,
		ConfigFile: *configFile,
	}

	if *port >= 0 {
		overrides.Port = port
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			os.Exit(exitConfig)
		}
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.String("server_name", cfg.Server.Name),
		zap.String("server_version", cfg.Server.Version),
		zap.Int("port", cfg.Server.Port),
		zap.String("default_language", cfg.Wikipedia.DefaultLanguage),
		zap.Bool("deduplication", cfg.Wikipedia.EnableDeduplication),
		zap.Bool("google_search_enabled", cfg.Google.APIKey != "" && cfg.Google.CSEID != ""),
		zap.Int("lru_cache_size", cfg.LRUCacheSize),
	)

	app := application.New(cfg, logger)
	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), shutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
