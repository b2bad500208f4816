package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/study_planner/internal/handlers"
	"github.com/Skotchmaster/study_planner/internal/middleware/auth"
)

type Deps struct {
	AuthHandler *handlers.AuthHandler
	PlanHandler *handlers.PlanHandler
	PageHandler *handlers.PageHandler
	Gate        *auth.Gate
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	e.GET("/", d.PageHandler.Home, d.Gate.Require(auth.Public))
	e.GET("/login", d.PageHandler.Login, d.Gate.Require(auth.AuthPage))
	e.GET("/register", d.PageHandler.Register, d.Gate.Require(auth.AuthPage))

	dashboard := e.Group("/dashboard", d.Gate.Require(auth.ProtectedUI))

	dashboard.GET("", d.PageHandler.Dashboard)
	dashboard.GET("/new", d.PageHandler.NewPlan)
	dashboard.GET("/profile", d.PageHandler.Profile)

	api := e.Group("/api")

	authAPI := api.Group("/auth")

	authAPI.POST("/register", d.AuthHandler.Register)
	authAPI.POST("/login", d.AuthHandler.Login)
	authAPI.GET("/logout", d.AuthHandler.Logout)
	authAPI.GET("/profile", d.AuthHandler.GetProfile, d.Gate.Require(auth.ProtectedAPI))
	authAPI.PUT("/profile", d.AuthHandler.UpdateProfile, d.Gate.Require(auth.ProtectedAPI))

	plans := api.Group("/plans", d.Gate.Require(auth.ProtectedAPI))

	plans.GET("", d.PlanHandler.List)
	plans.POST("/generate", d.PlanHandler.Generate)
	plans.GET("/search", d.PlanHandler.Search)
	plans.DELETE("/:id", d.PlanHandler.Delete)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Ready(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
	}
	return c.NoContent(http.StatusOK)
}
