package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/security"
	"github.com/HSouheill/simstore_backend/utils"
)

// ChallengeStore persists OTP challenges with an atomic consume
type ChallengeStore interface {
	// Save replaces any existing challenge for (ch.Mobile, ch.Purpose)
	Save(ctx context.Context, ch *models.OTPChallenge) error
	// Consume reports true exactly once for a live challenge whose hash matches
	Consume(ctx context.Context, mobile string, purpose models.OTPPurpose, codeHash string) (bool, error)
}

// OTPService issues and verifies numeric one-time codes
type OTPService struct {
	store  ChallengeStore
	length int
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

func NewOTPService(store ChallengeStore, length int, ttl time.Duration, logger *log.Logger) *OTPService {
	return &OTPService{
		store:  store,
		length: length,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// TTL is how long an issued code stays valid
func (s *OTPService) TTL() time.Duration { return s.ttl }

// Issue generates a fresh code for (mobile, purpose), invalidating the previous one
func (s *OTPService) Issue(ctx context.Context, mobile string, purpose models.OTPPurpose) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("issue otp: unknown purpose %q", purpose)
	}
	code, err := utils.GenerateNumericOTP(s.length)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	ch := &models.OTPChallenge{
		ID:        uuid.NewString(),
		Mobile:    mobile,
		Purpose:   purpose,
		CodeHash:  security.HashSecret(code),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, ch); err != nil {
		return "", err
	}

	s.logger.Printf("Issued %s otp challenge %s, expires at %s", purpose, ch.ID, ch.ExpiresAt.Format(time.RFC3339))
	return code, nil
}

// Verify consumes the challenge when code matches. Missing, expired, consumed,
// exhausted and mismatched challenges all yield ErrInvalidOTP.
func (s *OTPService) Verify(ctx context.Context, mobile string, purpose models.OTPPurpose, code string) error {
	if code == "" {
		return ErrInvalidOTP
	}
	ok, err := s.store.Consume(ctx, mobile, purpose, security.HashSecret(code))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}
