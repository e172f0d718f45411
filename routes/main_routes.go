package routes

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/controllers"
	"github.com/HSouheill/simstore_backend/services"
)

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, auth *services.AuthService, logger *log.Logger) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "SimStore auth backend is running",
			"version": "1.0",
		})
	})
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	RegisterAuthRoutes(e,
		controllers.NewAuthController(auth, logger),
		controllers.NewPasswordController(auth, logger),
	)
	RegisterUserRoutes(e, controllers.NewUserController(auth, logger), auth)
}
