package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alyabot/internal/config"
	"alyabot/internal/repository"
	"alyabot/internal/repository/file"
	"alyabot/internal/repository/memory"
	"alyabot/internal/repository/postgres"
	redisstore "alyabot/internal/repository/redis"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dbMaxRetries = 30
	dbRetryDelay = 2 * time.Second
)

// openWordRepo returns the configured word store and a func releasing it
func openWordRepo(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.WordRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := connectDatabase(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connection established")

		if err := runMigrations(db, cfg.Database.Migrations, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewWordRepo(db), func() { db.Close() }, nil

	default:
		logger.Info("Using file word store", zap.String("path", cfg.Store.DataFile))
		return file.NewWordRepo(cfg.Store.DataFile, logger), func() {}, nil
	}
}

// openSessionRepo returns the configured conversation store and a func releasing it
func openSessionRepo(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SessionRepository, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Using redis session store", zap.String("addr", cfg.Redis.Addr))
		return redisstore.NewSessionStore(client, cfg.SessionTTL()), func() { client.Close() }, nil

	default:
		logger.Info("Using in-memory session store")
		return memory.NewSessionStore(cfg.SessionTTL()), func() {}, nil
	}
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < dbMaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(dbRetryDelay):
			}
		}

		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			continue
		}

		// Test connection
		if err = db.PingContext(ctx); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbMaxRetries, err)
}

// runMigrations applies every pending migration from dir
func runMigrations(db *sql.DB, dir string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}
