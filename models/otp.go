package models

import (
	"time"
)

// OTPPurpose scopes a challenge so a code issued for one flow cannot be used in another
type OTPPurpose string

const (
	OTPPurposeSignup        OTPPurpose = "signup"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// Valid reports whether p is a known purpose
func (p OTPPurpose) Valid() bool {
	return p == OTPPurposeSignup || p == OTPPurposePasswordReset
}

// OTPChallenge represents a pending one-time code for a (mobile, purpose) key
type OTPChallenge struct {
	ID        string     `bson:"challengeId"`
	Mobile    string     `bson:"mobile"`
	Purpose   OTPPurpose `bson:"purpose"`
	CodeHash  string     `bson:"codeHash"`
	Attempts  int        `bson:"attempts"`
	Consumed  bool       `bson:"consumed"`
	CreatedAt time.Time  `bson:"createdAt"`
	ExpiresAt time.Time  `bson:"expiresAt"`
}

// ResetToken is the single-use credential handed out after a password-reset OTP is verified
type ResetToken struct {
	ID        string    `bson:"tokenId"`
	Mobile    string    `bson:"mobile"`
	TokenHash string    `bson:"tokenHash"`
	Consumed  bool      `bson:"consumed"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}
