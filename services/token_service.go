package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/security"
)

// ResetTokenStore persists reset tokens with an atomic consume
type ResetTokenStore interface {
	// Save replaces any live reset token for token.Mobile
	Save(ctx context.Context, token *models.ResetToken) error
	// Consume reports true exactly once for a live token bound to mobile
	Consume(ctx context.Context, mobile, tokenHash string) (bool, error)
}

// SessionClaims for JWT token
type SessionClaims struct {
	UserID string `json:"userId"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// TokenService mints session JWTs and single-use reset tokens
type TokenService struct {
	secret        []byte
	sessionTTL    time.Duration
	resetTokenTTL time.Duration
	resets        ResetTokenStore
	now           func() time.Time
}

func NewTokenService(secret string, sessionTTL, resetTokenTTL time.Duration, resets ResetTokenStore) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		resetTokenTTL: resetTokenTTL,
		resets:        resets,
		now:           time.Now,
	}
}

// IssueSession signs an HS256 token for user that expires after the session TTL
func (s *TokenService) IssueSession(user *models.User) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		UserID: user.ID.Hex(),
		Mobile: user.Mobile,
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.sessionTTL).Unix(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// VerifySession checks signature, algorithm and expiry
func (s *TokenService) VerifySession(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	claims := &SessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Tokens without an expiry are never accepted
	if claims.ExpiresAt == 0 || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueResetToken mints a random reset token for mobile. Call only after a
// successful password-reset OTP verification.
func (s *TokenService) IssueResetToken(ctx context.Context, mobile string) (string, error) {
	raw, err := security.GenerateToken(32)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now()
	record := &models.ResetToken{
		ID:        uuid.NewString(),
		Mobile:    mobile,
		TokenHash: security.HashSecret(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(s.resetTokenTTL),
	}
	if err := s.resets.Save(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

// ConsumeResetToken succeeds at most once per issued token
func (s *TokenService) ConsumeResetToken(ctx context.Context, mobile, token string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	ok, err := s.resets.Consume(ctx, mobile, security.HashSecret(token))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	return nil
}
