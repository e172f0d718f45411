package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/controllers"
)

// RegisterAuthRoutes sets up all public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController, passwordController *controllers.PasswordController) {
	g := e.Group("/auth")

	g.POST("/signup", authController.Signup)
	g.POST("/login", authController.Login)
	g.GET("/validate-token", authController.ValidateToken)

	// Password recovery: forgot-password -> verify-reset-otp -> reset-password
	g.POST("/forgot-password", passwordController.ForgotPassword)
	g.POST("/verify-reset-otp", passwordController.VerifyResetOTP)
	g.POST("/reset-password", passwordController.ResetPassword)
}
