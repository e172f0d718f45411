package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/middleware"
	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/services"
)

// AuthController contains signup, login and token validation handlers
type AuthController struct {
	auth   *services.AuthService
	logger *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(auth *services.AuthService, logger *log.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Signup handler
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	result, err := ac.auth.Signup(c.Request().Context(), req.Name, req.Email, req.Mobile, req.Password)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Signup successful",
		Data: models.AuthResponse{
			Token: result.Token,
			User:  result.User,
		},
	})
}

// Login handler
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	result, err := ac.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, ac.logger, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.AuthResponse{
			Token: result.Token,
			User:  result.User,
		},
	})
}

// ValidateToken reports whether the bearer token is still accepted
func (ac *AuthController) ValidateToken(c echo.Context) error {
	token, ok := middleware.ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "No authorization header provided",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	claims, err := ac.auth.Authenticate(token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"valid":     true,
			"userId":    claims.UserID,
			"expiresAt": time.Unix(claims.ExpiresAt, 0).UTC(),
		},
	})
}
