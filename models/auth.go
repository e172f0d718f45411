// models/auth.go

package models

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	Password string `json:"password" validate:"required,min=5,maxbytes=72"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Mobile string `json:"mobile" validate:"required,mobile"`
}

// VerifyResetOTPRequest is the body of POST /auth/verify-reset-otp
type VerifyResetOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,mobile"`
	OTP    string `json:"otp" validate:"required,numeric,min=4,max=10"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password
type ResetPasswordRequest struct {
	Mobile          string `json:"mobile" validate:"required,mobile"`
	ResetToken      string `json:"resetToken" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,min=5,maxbytes=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,maxbytes=72"`
}

// ConfirmMobileRequest is the body of POST /users/verify-mobile/confirm
type ConfirmMobileRequest struct {
	OTP string `json:"otp" validate:"required,numeric,min=4,max=10"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
