package utils

import (
	"context"
	"log"

	"github.com/HSouheill/simstore_backend/models"
)

// LogSender writes codes to the log instead of delivering them. Development only.
type LogSender struct {
	Logger *log.Logger
}

func (s LogSender) SendOTP(_ context.Context, user *models.User, code string, purpose models.OTPPurpose) error {
	s.Logger.Printf("OTP for %s (%s): %s", user.Mobile, purpose, code)
	return nil
}
