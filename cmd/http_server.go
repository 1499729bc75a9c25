package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/employee-management/api"
	"github.com/frahmantamala/employee-management/internal/session"
	"github.com/frahmantamala/employee-management/internal/transport/rest"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Core   *Core
	Router *chi.Mux
	Tokens *session.TokenIssuer
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	cfg := deps.Core.Config
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "storage", cfg.Storage.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Core.Close()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Core.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	c := deps.Core
	rest.RegisterAllRoutes(deps.Router, rest.RouterConfig{
		AuthHandler:     rest.NewAuthHandler(c.Controller, deps.Tokens, deps.Logger),
		EmployeeHandler: rest.NewEmployeeHandler(c.Controller, deps.Logger),
		HealthHandler:   rest.NewHealthHandler(c.Store, c.Config.Storage.Driver),
		Tokens:          deps.Tokens,
		Sessions:        c.Sessions,
		AllowedOrigins:  c.Config.Server.AllowedOrigins,
		Logger:          deps.Logger,
	})
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := api.Load(ctx); err != nil {
		return nil, fmt.Errorf("invalid embedded OpenAPI document: %w", err)
	}

	core, err := buildCore(ctx, config)
	if err != nil {
		return nil, err
	}

	view, err := core.Controller.Start(ctx)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("failed to start application: %w", err)
	}
	core.Logger.Info("application started", "view", view)

	secret := config.Security.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			core.Close()
			return nil, err
		}
		core.Logger.Warn("security.jwt_secret is empty; tokens will not survive a restart")
	}

	return &Dependencies{
		Core:   core,
		Router: chi.NewRouter(),
		Tokens: session.NewTokenIssuer(secret, config.Security.TokenDuration),
		Logger: core.Logger,
	}, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
