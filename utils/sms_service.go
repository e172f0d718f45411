package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HSouheill/simstore_backend/models"
)

// SMSService handles SMS sending using BestSMSBulk API
type SMSService struct {
	Username string
	Password string
	SenderID string
	APIPath  string
	Client   *http.Client
	logger   *log.Logger
}

// SMSResponse represents the response from BestSMSBulk API
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
	} `json:"data"`
}

// NewSMSService creates a new SMS service instance
func NewSMSService(username, password, senderID, apiPath string, logger *log.Logger) *SMSService {
	return &SMSService{
		Username: username,
		Password: password,
		SenderID: senderID,
		APIPath:  apiPath,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SendOTP texts the code to the account's mobile number
func (s *SMSService) SendOTP(ctx context.Context, user *models.User, code string, purpose models.OTPPurpose) error {
	phone := user.Mobile
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return s.Send(ctx, phone, OTPMessage(code, purpose))
}

// Send delivers a raw text message
func (s *SMSService) Send(ctx context.Context, phoneNumber, message string) error {
	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", phoneNumber)
	params.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIPath+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", "SimStore-OTP-Service/1.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d", resp.StatusCode)
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// Some gateway routes answer with plain text
		responseStr := strings.ToLower(strings.TrimSpace(string(body)))
		if strings.Contains(responseStr, "success") || strings.Contains(responseStr, "sent") {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" {
		s.logger.Printf("SMS sent, message id %s", smsResp.Data.MessageID)
		return nil
	}
	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}

// OTPMessage is the text delivered for a code of the given purpose
func OTPMessage(code string, purpose models.OTPPurpose) string {
	switch purpose {
	case models.OTPPurposePasswordReset:
		return fmt.Sprintf("Your SimStore password reset code is %s. Do not share it with anyone.", code)
	default:
		return fmt.Sprintf("Your SimStore verification code is %s.", code)
	}
}
