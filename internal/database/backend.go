package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yukikurage/taskboard-api/internal/config"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"gorm.io/gorm"
)

// Backend bundles the repositories of the configured driver with the
// lifecycle of the underlying connection. It is created once at startup and
// closed on shutdown.
type Backend struct {
	Driver string
	Users  repository.UserRepository
	Tasks  repository.TaskRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the configured store, prepares its schema or indexes and
// returns the repositories bound to it.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Backend, error) {
	if cfg.DBDriver == config.DriverMongo {
		m, err := ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureIndexes(ctx, log); err != nil {
			_ = m.Close(ctx)
			return nil, err
		}
		return NewMongoBackend(m), nil
	}

	db, err := OpenSQL(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, log); err != nil {
		_ = CloseSQL(db)
		return nil, err
	}
	return NewSQLBackend(db), nil
}

// NewSQLBackend wires the GORM repositories onto db.
func NewSQLBackend(db *gorm.DB) *Backend {
	return &Backend{
		Driver: db.Dialector.Name(),
		Users:  repository.NewUserRepository(db),
		Tasks:  repository.NewTaskRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			return CloseSQL(db)
		},
	}
}

// NewMongoBackend wires the Mongo repositories onto m.
func NewMongoBackend(m *Mongo) *Backend {
	return &Backend{
		Driver: config.DriverMongo,
		Users:  repository.NewMongoUserRepository(m.DB),
		Tasks:  repository.NewMongoTaskRepository(m.DB),
		ping:   m.Ping,
		close:  m.Close,
	}
}

// Ping reports whether the store is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return fmt.Errorf("backend %q has no health check", b.Driver)
	}
	return b.ping(ctx)
}

// Close releases the store connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}
