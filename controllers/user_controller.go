package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/middleware"
	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/services"
)

// UserController serves the authenticated account endpoints
type UserController struct {
	auth   *services.AuthService
	logger *log.Logger
}

func NewUserController(auth *services.AuthService, logger *log.Logger) *UserController {
	return &UserController{auth: auth, logger: logger}
}

// GetProfile returns the account behind the bearer token
func (uc *UserController) GetProfile(c echo.Context) error {
	user, err := uc.auth.Profile(c.Request().Context(), middleware.GetUserIDFromToken(c))
	if err != nil {
		return respondError(c, uc.logger, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// SendMobileVerification sends a signup OTP to the account's mobile number
func (uc *UserController) SendMobileVerification(c echo.Context) error {
	code, err := uc.auth.SendMobileVerification(c.Request().Context(), middleware.GetUserIDFromToken(c))
	if err != nil {
		return respondError(c, uc.logger, err)
	}

	data := map[string]interface{}{"message": "Verification code sent"}
	if code != "" {
		data["otp"] = code
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification code sent",
		Data:    data,
	})
}

// ConfirmMobileVerification marks the mobile number verified
func (uc *UserController) ConfirmMobileVerification(c echo.Context) error {
	var req models.ConfirmMobileRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	user, err := uc.auth.ConfirmMobileVerification(c.Request().Context(), middleware.GetUserIDFromToken(c), req.OTP)
	if err != nil {
		return respondError(c, uc.logger, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Mobile number verified",
		Data:    user,
	})
}
