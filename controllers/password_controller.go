// controllers/password_controller.go
package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/services"
)

// forgotPasswordMessage is identical for registered and unregistered numbers
const forgotPasswordMessage = "If an account exists for this mobile number, a verification code has been sent"

// PasswordController handles password reset functionality
type PasswordController struct {
	auth   *services.AuthService
	logger *log.Logger
}

// NewPasswordController creates a new password controller
func NewPasswordController(auth *services.AuthService, logger *log.Logger) *PasswordController {
	return &PasswordController{auth: auth, logger: logger}
}

// ForgotPassword initiates the password reset process
func (pc *PasswordController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	code, err := pc.auth.ForgotPassword(c.Request().Context(), req.Mobile)
	if err != nil {
		return respondError(c, pc.logger, err)
	}

	data := map[string]interface{}{"message": forgotPasswordMessage}
	if code != "" {
		data["otp"] = code
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: forgotPasswordMessage,
		Data:    data,
	})
}

// VerifyResetOTP exchanges the OTP for a reset token
func (pc *PasswordController) VerifyResetOTP(c echo.Context) error {
	var req models.VerifyResetOTPRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	resetToken, err := pc.auth.VerifyResetOTP(c.Request().Context(), req.Mobile, req.OTP)
	if err != nil {
		return respondError(c, pc.logger, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "OTP verified successfully",
		Data: map[string]interface{}{
			"resetToken": resetToken,
		},
	})
}

// ResetPassword resets the user's password
func (pc *PasswordController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	err := pc.auth.ResetPassword(c.Request().Context(), req.Mobile, req.ResetToken, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return respondError(c, pc.logger, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password reset successfully",
		Data: map[string]interface{}{
			"message": "Password reset successfully",
		},
	})
}
