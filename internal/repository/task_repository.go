package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return translateGormError(r.db.WithContext(ctx).Create(task).Error)
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &task, nil
}

// List retrieves tasks with filtering, sorting and optional pagination
func (r *GormTaskRepository) List(ctx context.Context, query TaskQuery) ([]models.Task, int64, error) {
	var total int64
	if err := r.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.filtered(ctx, query)
	switch query.Sort {
	case SortDueDate:
		listQuery = listQuery.
			Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END").
			Order("tasks.due_date ASC").
			Order("tasks.created_at DESC")
	case SortPriority:
		listQuery = listQuery.
			Order("tasks.priority ASC").
			Order("tasks.created_at DESC")
	default:
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	tasks := []models.Task{}
	if err := listQuery.Scopes(paginate(query)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// filtered builds a fresh query carrying the owner scope and all filters
func (r *GormTaskRepository) filtered(ctx context.Context, query TaskQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.owner_id = ?", query.OwnerID)

	if query.Status != nil {
		db = db.Where("tasks.status = ?", *query.Status)
	}
	if query.Priority != nil {
		db = db.Where("tasks.priority = ?", *query.Priority)
	}
	if query.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(query.Search)) + "%"
		db = db.Where("(LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	return db
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return translateGormError(r.db.WithContext(ctx).Save(task).Error)
}

// Delete permanently deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByField counts the owner's tasks grouped by status or priority
func (r *GormTaskRepository) CountByField(ctx context.Context, ownerID string, field TaskGroupField) (map[string]int64, error) {
	var column string
	switch field {
	case GroupByStatus:
		column = "status"
	case GroupByPriority:
		column = "priority"
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	var rows []struct {
		Label string
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select(column+" AS label, COUNT(*) AS total").
		Where("owner_id = ?", ownerID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Total
	}
	return counts, nil
}

// escapeLike escapes LIKE metacharacters using '!' as the escape character
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
