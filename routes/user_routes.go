package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/controllers"
	"github.com/HSouheill/simstore_backend/middleware"
)

// RegisterUserRoutes sets up all user-related protected routes
func RegisterUserRoutes(e *echo.Echo, userController *controllers.UserController, verifier middleware.SessionVerifier) {
	r := e.Group("/users")
	r.Use(middleware.JWTMiddleware(verifier))

	r.GET("/profile", userController.GetProfile)
	r.POST("/verify-mobile/send", userController.SendMobileVerification)
	r.POST("/verify-mobile/confirm", userController.ConfirmMobileVerification)
}
