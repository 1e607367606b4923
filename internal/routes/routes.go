package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/config"
	"github.com/yukikurage/taskboard-api/internal/handlers"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/ratelimit"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       handlers.Pinger
	AuthService *services.AuthService
	TaskService *services.TaskService
	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter ratelimit.Limiter
}

// Setup builds the gin engine with every API route mounted under the configured base path.
func Setup(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{deps.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	requireAuth := middleware.RequireAuth(deps.AuthService)
	requireTaskAccess := middleware.RequireTaskAccess(deps.TaskService)

	throttle := func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		throttle = middleware.RateLimit(deps.AuthLimiter)
	}

	api := r.Group(deps.Config.APIBasePath)
	{
		api.GET("/health", healthHandler.Check)

		auth := api.Group("/auth")
		{
			auth.POST("/register", throttle, authHandler.Register)
			auth.POST("/login", throttle, authHandler.Login)
			auth.GET("/verify", requireAuth, authHandler.Verify)
			auth.PUT("/update-profile", requireAuth, authHandler.UpdateProfile)
			auth.PUT("/change-password", requireAuth, authHandler.ChangePassword)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/stats/summary", taskHandler.Stats)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", requireTaskAccess, taskHandler.GetTask)
			tasks.PUT("/:id", requireTaskAccess, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireTaskAccess, taskHandler.DeleteTask)
		}
	}

	return r
}
