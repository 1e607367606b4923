package dto

import (
	"time"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Status string  `json:"status"`
	Token  string  `json:"token"`
	User   UserDTO `json:"user"`
}

// UserResponse wraps a single user
type UserResponse struct {
	Status string  `json:"status"`
	User   UserDTO `json:"user"`
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	UserID      string              `json:"userId"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	Tags        []string            `json:"tags"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// TaskResponse wraps a single task
type TaskResponse struct {
	Status string  `json:"status"`
	Data   TaskDTO `json:"data"`
}

// TaskListResponse represents a list of tasks, paginated when requested
type TaskListResponse struct {
	Status     string                    `json:"status"`
	Count      int                       `json:"count"`
	Data       []TaskDTO                 `json:"data"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// TaskStatsResponse holds per-label counts
type TaskStatsResponse struct {
	Status     string           `json:"status"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
}

// GeneratedTasksResponse holds AI task suggestions
type GeneratedTasksResponse struct {
	Status string                   `json:"status"`
	Count  int                      `json:"count"`
	Data   []services.GeneratedTask `json:"data"`
}

// HealthResponse reports server and store status
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Bio:       user.Bio,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		UserID:      task.OwnerID,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Tags:        tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, pagination *utils.PaginationResponse) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Status:     "success",
		Count:      len(items),
		Data:       items,
		Pagination: pagination,
	}
}
