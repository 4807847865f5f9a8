package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mcpkit/combined-mcp-server/internal/config"
)

const readHeaderTimeout = 5 * time.Second

// App encapsulates the application dependencies and HTTP server.
type App struct {
	config config.Config
	logger *zap.Logger
	server *http.Server
}

// New wires the application from the provided configuration. The search and
// wikipedia integrations register themselves here once they exist; until
// then the listener only exposes the health endpoint.
func New(cfg config.Config, logger *zap.Logger) *App {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           NewHandler(cfg),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &App{
		config: cfg,
		logger: logger,
		server: server,
	}
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg config.Config) http.Handler {
	health, err := json.Marshal(struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
		Status:  "ok",
	})
	if err != nil {
		// Marshalling a struct of strings cannot fail.
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(health)
	})
	return mux
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("name", a.config.Server.Name),
			zap.String("version", a.config.Server.Version),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
