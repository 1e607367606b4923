package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/gorm"
)

// Migrate creates or updates the SQL schema, including the owner/created_at index.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}

// EnsureIndexes creates the Mongo indexes the repositories rely on.
// The unique email index is what turns concurrent duplicate registrations into conflicts.
func (m *Mongo) EnsureIndexes(ctx context.Context, log *slog.Logger) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			collection: repository.UsersCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("idx_users_email").SetUnique(true),
			},
		},
		{
			collection: repository.TasksCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("idx_tasks_owner_created"),
			},
		},
	}

	for _, idx := range indexes {
		name, err := m.DB.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.collection, err)
		}
		log.Info("index ensured", "collection", idx.collection, "index", name)
	}

	return nil
}
