package services

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/repositories"
	"github.com/HSouheill/simstore_backend/utils"
)

func TestMain(m *testing.M) {
	utils.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// memoryUsers is a UserStore with the same uniqueness rules as the Mongo indexes
type memoryUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
	fail error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[primitive.ObjectID]*models.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, u := range m.byID {
		if u.Mobile == user.Mobile || u.Email == user.Email {
			return repositories.ErrDuplicateIdentity
		}
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memoryUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) FindByMobile(_ context.Context, mobile string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Mobile == mobile })
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID.Hex() == id })
}

func (m *memoryUsers) update(id primitive.ObjectID, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	u, ok := m.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	fn(u)
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return m.update(id, func(u *models.User) { u.Password = hash })
}

func (m *memoryUsers) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	return m.update(id, func(u *models.User) { u.IsVerified = true })
}

func (m *memoryUsers) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return m.update(id, func(u *models.User) { u.LastLoginAt = &at })
}

// recordingSender keeps the last code sent per mobile
type recordingSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (s *recordingSender) SendOTP(_ context.Context, user *models.User, code string, purpose models.OTPPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.codes == nil {
		s.codes = make(map[string]string)
	}
	s.codes[string(purpose)+":"+user.Mobile] = code
	return nil
}

func (s *recordingSender) last(mobile string, purpose models.OTPPurpose) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[string(purpose)+":"+mobile]
}

type fixture struct {
	redis  *miniredis.Miniredis
	users  *memoryUsers
	sender *recordingSender
	otp    *OTPService
	tokens *TokenService
	auth   *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := log.New(io.Discard, "", 0)
	users := newMemoryUsers()
	sender := &recordingSender{}
	otp := NewOTPService(repositories.NewRedisOTPRepository(client, 5), 6, 5*time.Minute, logger)
	tokens := NewTokenService("test-secret", time.Hour, 10*time.Minute, repositories.NewRedisResetTokenRepository(client))

	return &fixture{
		redis:  mr,
		users:  users,
		sender: sender,
		otp:    otp,
		tokens: tokens,
		auth: NewAuthService(AuthServiceConfig{
			Credentials: NewCredentialService(users),
			OTP:         otp,
			Tokens:      tokens,
			Sender:      sender,
			ExposeOTP:   true,
			Logger:      logger,
		}),
	}
}

func (f *fixture) userID(t *testing.T, mobile string) string {
	t.Helper()
	user, err := f.users.FindByMobile(context.Background(), mobile)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.ID.Hex()
}
