package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrackhq/tasktrack/internal/plugins/auth"
	"github.com/tasktrackhq/tasktrack/internal/plugins/mailer"
	"github.com/tasktrackhq/tasktrack/internal/plugins/tasks"
)

// RegisterRoutes builds each plugin's repository/service/handler chain and
// registers its routes. This is the single place where all routes are
// aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Mailer ---
	sender := mailer.New(a.Config.SMTP)

	// --- Auth plugin ---
	userRepo := auth.NewUserRepository(a.DB)
	tokenIssuer := auth.NewTokenIssuer(a.Config.Auth.JWTSecret, a.Config.Auth.JWTTTL)
	authService := auth.NewAuthService(userRepo, sender, tokenIssuer, a.Config.BaseURL, a.Config.Auth)
	authHandler := auth.NewHandler(authService)
	requireAuth := auth.RequireAuth(authService)
	auth.RegisterRoutes(e, authHandler, requireAuth)

	// --- Tasks plugin ---
	taskRepo := tasks.NewTaskRepository(a.DB)
	taskService := tasks.NewTaskService(taskRepo)
	taskHandler := tasks.NewHandler(taskService)
	tasks.RegisterRoutes(e, taskHandler, requireAuth)
}
