// Package router assembles the gin engine: global middleware, the route
// table and the ambient /health and /metrics endpoints.
package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-manager-api/internal/auth"
	"github.com/yukikurage/task-manager-api/internal/config"
	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/database"
	"github.com/yukikurage/task-manager-api/internal/handlers"
	"github.com/yukikurage/task-manager-api/internal/middleware"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Logger zerolog.Logger
	Hasher *auth.PasswordHasher
	Tokens *auth.TokenManager
}

// New builds the HTTP engine.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	store := repository.NewStore(deps.DB)

	authService := services.NewAuthService(store, deps.Hasher, deps.Tokens)
	userService := services.NewUserService(store, deps.Hasher)
	taskService := services.NewTaskService(store)
	statsService := services.NewStatsService(store)

	authHandler := handlers.NewAuthHandler(authService, cfg.TokenTTL)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	statsHandler := handlers.NewStatsHandler(statsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
		ExposeHeaders:    []string{constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.Health(func(ctx context.Context) error {
		return database.Ping(ctx, deps.DB)
	}))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(authService)
	requireAdmin := middleware.RequireAdmin()
	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRateLimit)

	// Auth routes
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)
		authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
		authRoutes.PUT("/me", requireAuth, authHandler.UpdateCurrentUser)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	// Administrator routes
	admin := r.Group("/admin")
	admin.Use(requireAuth, requireAdmin)
	{
		admin.GET("/tasks", taskHandler.SearchTasks)
		admin.POST("/users/:id/tasks", taskHandler.CreateTaskForUser)
	}

	users := r.Group("/users")
	users.Use(requireAuth, requireAdmin)
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	r.GET("/stats", requireAuth, requireAdmin, statsHandler.GetStats)

	return r
}
