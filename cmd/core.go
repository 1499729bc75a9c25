package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/app"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/session"
	"github.com/frahmantamala/employee-management/internal/storage"
	"github.com/frahmantamala/employee-management/internal/storage/file"
	"github.com/frahmantamala/employee-management/internal/storage/memory"
	"github.com/frahmantamala/employee-management/internal/storage/redisstore"
	"github.com/frahmantamala/employee-management/internal/storage/sqlstore"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

// Core is the wired application shared by the server and console commands.
type Core struct {
	Config     *internal.Config
	Store      storage.KV
	Sessions   *session.Manager
	Employees  *employee.Repository
	Controller *app.Controller
	Bus        *events.EventBus
	Logger     *slog.Logger
}

func (c *Core) Close() {
	c.Bus.Wait()
	if err := c.Store.Close(); err != nil {
		c.Logger.Error("store close error", "error", err)
	}
}

func buildCore(ctx context.Context, cfg *internal.Config) (*Core, error) {
	lg := logger.LoggerWrapper()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, events.AuditLogger(lg.With("component", "audit")))

	sessions := session.NewManager(store, session.NewVerifier(cfg.Security), lg.With("component", "session"))
	repo := employee.NewRepository(store, lg.With("component", "employee"), employee.Options{
		EnforceUniqueCodes: cfg.App.EnforceUniqueCodes,
		RecoverCorrupt:     cfg.App.RecoverCorruptStore,
	})
	controller := app.NewController(sessions, repo, bus, lg.With("component", "app"), app.Options{
		SimulatedLatency: cfg.App.SimulatedLatency,
		CollationLocale:  cfg.App.CollationLocale,
	})

	return &Core{
		Config:     cfg,
		Store:      store,
		Sessions:   sessions,
		Employees:  repo,
		Controller: controller,
		Bus:        bus,
		Logger:     lg,
	}, nil
}

// openStore picks the backend named by storage.driver.
func openStore(ctx context.Context, cfg internal.StorageConfig) (storage.KV, error) {
	switch cfg.Driver {
	case internal.StorageDriverMemory:
		return memory.New(), nil
	case internal.StorageDriverFile:
		return file.OpenOS(cfg.Path)
	case internal.StorageDriverSQLite, internal.StorageDriverPostgres:
		return sqlstore.Open(cfg.Driver, cfg.Source, sqlstore.Options{
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		})
	case internal.StorageDriverRedis:
		return redisstore.Open(ctx, redisstore.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
