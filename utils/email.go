package utils

import (
	"context"
	"fmt"
	"html"

	"github.com/HSouheill/simstore_backend/models"
	"gopkg.in/gomail.v2"
)

// EmailService delivers OTP codes over SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(host string, port int, user, pass, from string) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// SendOTP mails the code to the account's email address
func (s *EmailService) SendOTP(ctx context.Context, user *models.User, code string, purpose models.OTPPurpose) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "Your verification code"
	if purpose == models.OTPPurposePasswordReset {
		subject = "Password Reset OTP"
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<p>Hello %s,</p>
			<p>%s</p>
			<h3 style="background-color: #f0f0f0; padding: 10px; font-size: 24px; letter-spacing: 5px; text-align: center;">%s</h3>
			<p>If you did not request this code, please ignore this email.</p>
		</body>
		</html>
	`, html.EscapeString(user.FullName), html.EscapeString(OTPMessage(code, purpose)), code)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
