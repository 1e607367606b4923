package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/logging"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// TaskLoader loads a task on behalf of a caller, enforcing ownership.
type TaskLoader interface {
	GetTask(ctx context.Context, taskID, callerID string) (*models.Task, error)
}

// RequireTaskAccess loads the task named by the :id parameter and checks the caller owns it.
// A missing task is 404, someone else's task is 403.
func RequireTaskAccess(loader TaskLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := loader.GetTask(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTaskNotFound):
				apierrors.NotFound(c, "Task not found")
			case errors.Is(err, services.ErrTaskForbidden):
				apierrors.Forbidden(c, "Not authorized to access this task")
			default:
				logging.FromContext(c.Request.Context()).Error("failed to load task", "task_id", c.Param("id"), "error", err)
				apierrors.InternalError(c, "Failed to fetch task")
			}
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
