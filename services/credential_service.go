package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/repositories"
	"github.com/HSouheill/simstore_backend/utils"
)

// UserStore is the persistence the credential service needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// CredentialService owns account records and password hashes
type CredentialService struct {
	users UserStore
	now   func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialService(users UserStore) *CredentialService {
	return &CredentialService{users: users, now: time.Now}
}

// CreateAccount stores a new unverified account with a bcrypt password hash
func (s *CredentialService) CreateAccount(ctx context.Context, name, email, mobile, password string) (*models.User, error) {
	if existing, err := s.users.FindByMobile(ctx, mobile); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateIdentity
	}
	if existing, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateIdentity
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		FullName:  name,
		Email:     email,
		Mobile:    mobile,
		Password:  hash,
		KYCStatus: models.KYCStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// The unique indexes settle signups racing past the checks above
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateIdentity) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}
	return user, nil
}

func (s *CredentialService) FindByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return s.users.FindByMobile(ctx, mobile)
}

func (s *CredentialService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *CredentialService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// VerifyPassword reports whether plaintext matches the account's hash.
// A nil account still costs one bcrypt comparison.
func (s *CredentialService) VerifyPassword(user *models.User, plaintext string) bool {
	if user == nil {
		_ = utils.CheckPassword(plaintext, s.dummy())
		return false
	}
	return utils.CheckPassword(plaintext, user.Password) == nil
}

// UpdatePassword replaces the stored hash and nothing else
func (s *CredentialService) UpdatePassword(ctx context.Context, user *models.User, plaintext string) error {
	hash, err := utils.HashPassword(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.Password = hash
	return nil
}

func (s *CredentialService) MarkVerified(ctx context.Context, user *models.User) error {
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}
	user.IsVerified = true
	return nil
}

func (s *CredentialService) TouchLastLogin(ctx context.Context, user *models.User) error {
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return err
	}
	user.LastLoginAt = &now
	return nil
}

func (s *CredentialService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("dummy-password-for-timing")
	})
	return s.dummyHash
}
