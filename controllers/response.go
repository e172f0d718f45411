package controllers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/services"
	"github.com/HSouheill/simstore_backend/utils"
)

// bindAndValidate decodes the JSON body into req and runs the validator tags.
// On failure it returns the message to send back with a 400.
func bindAndValidate(c echo.Context, req interface{}) (string, bool) {
	if err := c.Bind(req); err != nil {
		return "Invalid request body", false
	}
	if err := c.Validate(req); err != nil {
		return utils.ValidationMessage(err), false
	}
	return "", true
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}

// respondError renders auth errors with coarse messages and hides everything else behind a 500
func respondError(c echo.Context, logger *log.Logger, err error) error {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch services.CodeOf(err) {
	case services.CodeInvalidInput:
		status, message = http.StatusBadRequest, err.Error()
	case services.CodeDuplicateIdentity:
		status, message = http.StatusBadRequest, "An account with this mobile number or email already exists"
	case services.CodeInvalidCredentials:
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case services.CodeAccountNotFound:
		status, message = http.StatusNotFound, "Account not found"
	case services.CodeInvalidOTP:
		status, message = http.StatusBadRequest, "Invalid or expired OTP"
	case services.CodeInvalidResetToken:
		status, message = http.StatusBadRequest, "Invalid or expired reset token"
	case services.CodePasswordMismatch:
		status, message = http.StatusBadRequest, "Passwords do not match"
	case services.CodeInvalidToken:
		status, message = http.StatusUnauthorized, "Invalid or expired token"
	default:
		logger.Printf("%s %s failed: %v", c.Request().Method, c.Path(), err)
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}
