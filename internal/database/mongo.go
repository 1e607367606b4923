package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yukikurage/taskboard-api/internal/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

// Mongo holds the client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ConnectMongo dials MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	log.Info("database connection established", "driver", config.DriverMongo, "database", cfg.MongoDatabase)
	return &Mongo{
		Client: client,
		DB:     client.Database(cfg.MongoDatabase),
	}, nil
}

// Ping checks that the server is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
