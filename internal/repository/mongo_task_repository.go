package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskboard-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// TasksCollection is the Mongo collection holding task documents.
const TasksCollection = "tasks"

// dueMissingField is a computed sort key, stripped before documents are decoded.
const dueMissingField = "_dueMissing"

// MongoTaskRepository is a MongoDB implementation of TaskRepository
type MongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository creates a TaskRepository backed by the tasks collection
func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	return &MongoTaskRepository{coll: db.Collection(TasksCollection)}
}

// Create inserts a new task document
func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if task.Tags == nil {
		task.Tags = []string{}
	}

	_, err := r.coll.InsertOne(ctx, task)
	return translateMongoError(err)
}

// FindByID finds a task by ID
func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&task); err != nil {
		return nil, translateMongoError(err)
	}
	return &task, nil
}

// List runs the aggregation pipeline built from the query
func (r *MongoTaskRepository) List(ctx context.Context, query TaskQuery) ([]models.Task, int64, error) {
	total, err := r.coll.CountDocuments(ctx, taskFilter(query))
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Aggregate(ctx, taskPipeline(query))
	if err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update replaces the stored task document
func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	if task.Tags == nil {
		task.Tags = []string{}
	}

	result, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: task.ID}}, task)
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a task document
func (r *MongoTaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByField groups the owner's tasks by status or priority
func (r *MongoTaskRepository) CountByField(ctx context.Context, ownerID string, field TaskGroupField) (map[string]int64, error) {
	pipeline, err := groupPipeline(ownerID, field)
	if err != nil {
		return nil, err
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Label string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}

// taskFilter builds the $match document for a query
func taskFilter(query TaskQuery) bson.D {
	filter := bson.D{{Key: "userId", Value: query.OwnerID}}

	if query.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: string(*query.Status)})
	}
	if query.Priority != nil {
		filter = append(filter, bson.E{Key: "priority", Value: string(*query.Priority)})
	}
	if query.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}

	return filter
}

// taskPipeline builds the aggregation used for listing
func taskPipeline(query TaskQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: taskFilter(query)}},
	}

	var computed []string
	switch query.Sort {
	case SortDueDate:
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: bson.D{{Key: dueMissingField, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$dueDate", nil}}}, nil}}},
				1,
				0,
			}}}}}}},
			bson.D{{Key: "$sort", Value: bson.D{
				{Key: dueMissingField, Value: 1},
				{Key: "dueDate", Value: 1},
				{Key: "createdAt", Value: -1},
			}}},
		)
		computed = append(computed, dueMissingField)
	case SortPriority:
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
			{Key: "priority", Value: 1},
			{Key: "createdAt", Value: -1},
		}}})
	default:
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}})
	}

	if query.Paginated() {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: int64(query.Offset())}},
			bson.D{{Key: "$limit", Value: int64(query.PageSize)}},
		)
	}

	if len(computed) > 0 {
		projection := bson.D{}
		for _, field := range computed {
			projection = append(projection, bson.E{Key: field, Value: 0})
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection}})
	}

	return pipeline
}

// groupPipeline builds the $match/$group aggregation for stats
func groupPipeline(ownerID string, field TaskGroupField) (mongo.Pipeline, error) {
	switch field {
	case GroupByStatus, GroupByPriority:
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + string(field)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}, nil
}

// translateMongoError maps driver errors onto the repository ones
func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	default:
		return err
	}
}
