package server

import (
	"context"
	"fmt"
	"log/slog"

	"tasktracker/internal/config"
	"tasktracker/internal/database"
	"tasktracker/internal/handler"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/mongorepo"
	"tasktracker/internal/service"
)

// stores is the backend chosen by DB_DRIVER.
type stores struct {
	tasks service.TaskStore
	users service.UserStore
	ping  handler.PingFunc
	close func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return openPostgresStores(ctx, cfg, log)
	case config.DriverMongo:
		return openMongoStores(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want %q or %q)", cfg.DBDriver, config.DriverPostgres, config.DriverMongo)
	}
}

func openPostgresStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	db, err := database.OpenPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	log.Info("✅ Connected to database", "driver", config.DriverPostgres, "host", cfg.DBHost, "name", cfg.DBName)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("❌ failed to migrate: %w", err)
		}
		log.Info("✅ Migrations applied")
	}

	return &stores{
		tasks: repository.NewTaskRepository(db, cfg.DBTimeout),
		users: repository.NewUserRepository(db, cfg.DBTimeout),
		ping:  sqlDB.PingContext,
		close: func(context.Context) error { return database.ClosePostgres(db) },
	}, nil
}

func openMongoStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	client, err := database.OpenMongo(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	log.Info("✅ Connected to database", "driver", config.DriverMongo, "name", cfg.MongoDB)

	db := client.Database(cfg.MongoDB)
	idxCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()
	if err := mongorepo.EnsureIndexes(idxCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("❌ failed to create indexes: %w", err)
	}

	return &stores{
		tasks: mongorepo.NewTaskRepository(db, cfg.DBTimeout),
		users: mongorepo.NewUserRepository(db, cfg.DBTimeout),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}, nil
}
