package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/logging"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks.
// Supports status, priority, search and sort filters and optional page/limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		UserID:   userID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, utils.NewPaginationResponse(params, total)))
}

// GetTask returns a specific task.
// The task is loaded and ownership checked by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.TaskResponse{
		Status: "success",
		Data:   dto.ToTaskDTO(*task),
	})
}

// CreateTask creates a new task owned by the current user. New tasks start pending.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Priority    string      `json:"priority"`
		DueDate     dto.DueDate `json:"dueDate"`
		Tags        []string    `json:"tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Value,
		Tags:        req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskResponse{
		Status: "success",
		Data:   dto.ToTaskDTO(*task),
	})
}

// UpdateTask updates the provided fields of a task. A null dueDate clears it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string     `json:"title"`
		Description *string     `json:"description"`
		Status      *string     `json:"status"`
		Priority    *string     `json:"priority"`
		DueDate     dto.DueDate `json:"dueDate"`
		Tags        *[]string   `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
	}
	if req.DueDate.Set {
		input.DueDate = req.DueDate.Value
		input.ClearDueDate = req.DueDate.Value == nil
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskResponse{
		Status: "success",
		Data:   dto.ToTaskDTO(*updated),
	})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Status:  "success",
		Message: "Task deleted successfully",
	})
}

// Stats returns task counts grouped by status and by priority
func (h *TaskHandler) Stats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.taskService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskStatsResponse{
		Status:     "success",
		ByStatus:   stats.ByStatus,
		ByPriority: stats.ByPriority,
	})
}

// GenerateTasks suggests tasks from free text using AI. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GeneratedTasksResponse{
		Status: "success",
		Count:  len(tasks),
		Data:   tasks,
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c, "Not authorized to access this task")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		logging.FromContext(c.Request.Context()).Error("task request failed", "path", c.FullPath(), "error", err)
		apierrors.InternalError(c, "")
	}
}
