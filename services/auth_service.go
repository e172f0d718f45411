package services

import (
	"context"
	"fmt"
	"log"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/utils"
)

// OTPSender delivers a code to the account holder out of band
type OTPSender interface {
	SendOTP(ctx context.Context, user *models.User, code string, purpose models.OTPPurpose) error
}

// AuthResult is what signup and login hand back to the caller
type AuthResult struct {
	Token string
	User  *models.User
}

// AuthService drives signup, login, password recovery and mobile verification.
// It is the only writer of OTP challenge and reset token lifecycles.
type AuthService struct {
	credentials *CredentialService
	otp         *OTPService
	tokens      *TokenService
	sender      OTPSender
	exposeOTP   bool
	logger      *log.Logger
}

// AuthServiceConfig wires the collaborators of AuthService
type AuthServiceConfig struct {
	Credentials *CredentialService
	OTP         *OTPService
	Tokens      *TokenService
	Sender      OTPSender
	// ExposeOTP returns issued codes to the caller; never set in production
	ExposeOTP bool
	Logger    *log.Logger
}

func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		credentials: cfg.Credentials,
		otp:         cfg.OTP,
		tokens:      cfg.Tokens,
		sender:      cfg.Sender,
		exposeOTP:   cfg.ExposeOTP,
		logger:      cfg.Logger,
	}
}

// Signup creates an unverified account and logs it in straight away
func (s *AuthService) Signup(ctx context.Context, name, email, mobile, password string) (*AuthResult, error) {
	email, mobile, err := normalizeIdentity(email, mobile)
	if err != nil {
		return nil, err
	}
	name = utils.CleanText(name)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}

	user, err := s.credentials.CreateAccount(ctx, name, email, mobile, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueSession(user)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Account %s created", user.ID.Hex())
	return &AuthResult{Token: token, User: user}, nil
}

// Login fails with ErrInvalidCredentials for both unknown emails and wrong passwords
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := utils.SanitizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.credentials.VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.credentials.TouchLastLogin(ctx, user); err != nil {
		// Log the error but don't fail the login
		s.logger.Printf("Failed to update last login for %s: %v", user.ID.Hex(), err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ForgotPassword issues and dispatches a password-reset OTP when mobile is
// registered. Unregistered numbers and failed deliveries get the same empty
// result so the endpoint cannot be used to enumerate accounts. The code is
// only returned when ExposeOTP is set.
func (s *AuthService) ForgotPassword(ctx context.Context, mobile string) (string, error) {
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return "", invalidInput("invalid mobile number")
	}

	user, err := s.credentials.FindByMobile(ctx, mobile)
	if err != nil {
		return "", err
	}
	if user == nil {
		s.logger.Printf("Password reset requested for unregistered mobile %s", maskMobile(mobile))
		return "", nil
	}

	code, err := s.otp.Issue(ctx, mobile, models.OTPPurposePasswordReset)
	if err != nil {
		return "", err
	}
	if err := s.sender.SendOTP(ctx, user, code, models.OTPPurposePasswordReset); err != nil {
		s.logger.Printf("Password reset OTP delivery to %s failed: %v", maskMobile(mobile), err)
		return "", nil
	}

	if s.exposeOTP {
		return code, nil
	}
	return "", nil
}

// VerifyResetOTP exchanges a valid password-reset code for a reset token.
// A wrong code leaves the challenge usable until it expires or runs out of attempts.
func (s *AuthService) VerifyResetOTP(ctx context.Context, mobile, code string) (string, error) {
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return "", ErrInvalidOTP
	}
	if err := s.otp.Verify(ctx, mobile, models.OTPPurposePasswordReset, code); err != nil {
		return "", err
	}
	return s.tokens.IssueResetToken(ctx, mobile)
}

// ResetPassword commits a new password. The reset token is consumed before the
// update runs, so a failed update still burns it.
func (s *AuthService) ResetPassword(ctx context.Context, mobile, resetToken, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	// Reject what bcrypt would refuse before the token is spent
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return ErrInvalidResetToken
	}

	if err := s.tokens.ConsumeResetToken(ctx, mobile, resetToken); err != nil {
		return err
	}

	user, err := s.credentials.FindByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}
	if err := s.credentials.UpdatePassword(ctx, user, newPassword); err != nil {
		return err
	}

	s.logger.Printf("Password reset for account %s", user.ID.Hex())
	return nil
}

// Authenticate resolves a bearer token to its claims
func (s *AuthService) Authenticate(token string) (*SessionClaims, error) {
	return s.tokens.VerifySession(token)
}

// Profile returns the account behind a verified session
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// SendMobileVerification issues a signup-purpose OTP to the account's mobile
func (s *AuthService) SendMobileVerification(ctx context.Context, userID string) (string, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return "", invalidInput("mobile number is already verified")
	}

	code, err := s.otp.Issue(ctx, user.Mobile, models.OTPPurposeSignup)
	if err != nil {
		return "", err
	}
	if err := s.sender.SendOTP(ctx, user, code, models.OTPPurposeSignup); err != nil {
		return "", fmt.Errorf("deliver otp: %w", err)
	}

	if s.exposeOTP {
		return code, nil
	}
	return "", nil
}

// ConfirmMobileVerification marks the account verified once its signup OTP checks out
func (s *AuthService) ConfirmMobileVerification(ctx context.Context, userID, code string) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return user, nil
	}
	if err := s.otp.Verify(ctx, user.Mobile, models.OTPPurposeSignup, code); err != nil {
		return nil, err
	}
	if err := s.credentials.MarkVerified(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func checkPasswordLength(password string) error {
	if utils.PasswordTooLong(password) {
		return invalidInput(fmt.Sprintf("password must be at most %d bytes long", utils.MaxPasswordBytes))
	}
	return nil
}

func normalizeIdentity(email, mobile string) (string, string, error) {
	email, err := utils.SanitizeEmail(email)
	if err != nil {
		return "", "", invalidInput("invalid email format")
	}
	mobile, err = utils.NormalizeMobile(mobile)
	if err != nil {
		return "", "", invalidInput("invalid mobile number")
	}
	return email, mobile, nil
}

// maskMobile keeps the last three digits for logs
func maskMobile(mobile string) string {
	if len(mobile) <= 3 {
		return "***"
	}
	return "***" + mobile[len(mobile)-3:]
}
