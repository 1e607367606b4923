package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskForbidden          = errors.New("not authorized to access this task")
	ErrTitleRequired          = newValidationError("title is required")
	ErrTitleLength            = newValidationError("title must be between 3 and 100 characters")
	ErrDescriptionTooLong     = newValidationError("description cannot exceed 1000 characters")
	ErrInvalidStatus          = newValidationError("status must be one of pending, in-progress, completed")
	ErrInvalidPriority        = newValidationError("priority must be one of low, medium, high")
	ErrInvalidSort            = newValidationError("sort must be one of due-date, priority")
	ErrInvalidTags            = newValidationError("too many tags or tag too long")
	ErrInvalidPage            = newValidationError("page and limit must be positive")
	ErrTextRequired           = newValidationError("text is required")
	ErrTextTooLong            = newValidationError("text is too long")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskGenerator extracts task suggestions from free text.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	generator TaskGenerator
	now       func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil, in which
// case suggestion requests fail with ErrAIServiceNotConfigured.
func NewTaskService(taskRepo repository.TaskRepository, generator TaskGenerator) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		generator: generator,
		now:       time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID   string
	Status   string
	Priority string
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     string
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	Tags        []string
}

// UpdateTaskInput represents input for updating a task. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
}

// TaskStats holds per-label task counts. Labels without tasks are absent.
type TaskStats struct {
	ByStatus   map[string]int64
	ByPriority map[string]int64
}

// ListTasks returns the caller's tasks matching the filters together with the total match count
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	query, err := buildTaskQuery(input)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task owned by callerID
func (s *TaskService) GetTask(ctx context.Context, taskID, callerID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.OwnerID != callerID {
		return nil, ErrTaskForbidden
	}

	return task, nil
}

// CreateTask validates input and stores a new pending task for its owner
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		if priority, err = parsePriority(input.Priority); err != nil {
			return nil, err
		}
	}

	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		Tags:        tags,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask applies the provided fields to a task owned by callerID
func (s *TaskService) UpdateTask(ctx context.Context, taskID, callerID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID, callerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return nil, err
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		status, err := parseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if input.Priority != nil {
		priority, err := parsePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		tags, err := normalizeTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task owned by callerID
func (s *TaskService) DeleteTask(ctx context.Context, taskID, callerID string) error {
	if _, err := s.GetTask(ctx, taskID, callerID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Stats counts the owner's tasks by status and by priority
func (s *TaskService) Stats(ctx context.Context, ownerID string) (*TaskStats, error) {
	byStatus, err := s.taskRepo.CountByField(ctx, ownerID, repository.GroupByStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	byPriority, err := s.taskRepo.CountByField(ctx, ownerID, repository.GroupByPriority)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by priority: %w", err)
	}

	return &TaskStats{ByStatus: byStatus, ByPriority: byPriority}, nil
}

// GenerateTasks uses AI to suggest tasks from text. Suggestions are not persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}
	if utf8.RuneCountInString(text) > constants.MaxAIInputLength {
		return nil, ErrTextTooLong
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}
		if utf8.RuneCountInString(aiTask.Title) > constants.MaxTitleLength {
			aiTask.Title = string([]rune(aiTask.Title)[:constants.MaxTitleLength])
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		if !models.TaskPriority(aiTask.Priority).Valid() {
			aiTask.Priority = string(models.TaskPriorityMedium)
		}

		if tags, err := normalizeTags(aiTask.Tags); err == nil {
			aiTask.Tags = tags
		} else {
			aiTask.Tags = []string{}
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func buildTaskQuery(input ListTasksInput) (repository.TaskQuery, error) {
	query := repository.TaskQuery{
		OwnerID: input.UserID,
		Search:  strings.TrimSpace(input.Search),
		Sort:    repository.TaskSort(input.Sort),
	}

	if input.Status != "" {
		status, err := parseStatus(input.Status)
		if err != nil {
			return query, err
		}
		query.Status = &status
	}
	if input.Priority != "" {
		priority, err := parsePriority(input.Priority)
		if err != nil {
			return query, err
		}
		query.Priority = &priority
	}
	if !query.Sort.Valid() {
		return query, ErrInvalidSort
	}

	if input.Page < 0 || input.PageSize < 0 {
		return query, ErrInvalidPage
	}
	if input.Page > 0 || input.PageSize > 0 {
		query.Page = max(input.Page, 1)
		query.PageSize = input.PageSize
		if query.PageSize == 0 {
			query.PageSize = constants.DefaultPageSize
		}
		query.PageSize = min(query.PageSize, constants.MaxPageSize)
	}

	return query, nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrTitleRequired
	}
	n := utf8.RuneCountInString(title)
	if n < constants.MinTitleLength || n > constants.MaxTitleLength {
		return "", ErrTitleLength
	}
	return title, nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > constants.MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func parseStatus(raw string) (models.TaskStatus, error) {
	status := models.TaskStatus(raw)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func parsePriority(raw string) (models.TaskPriority, error) {
	priority := models.TaskPriority(raw)
	if !priority.Valid() {
		return "", ErrInvalidPriority
	}
	return priority, nil
}

// normalizeTags trims tags and drops empty ones, keeping order and duplicates.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) > constants.MaxTagCount {
		return nil, ErrInvalidTags
	}
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > constants.MaxTagLength {
			return nil, ErrInvalidTags
		}
		result = append(result, tag)
	}
	return result, nil
}
