package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/repositories"
)

func TestCredentialService_CreateAccount(t *testing.T) {
	users := newMemoryUsers()
	svc := NewCredentialService(users)
	ctx := context.Background()

	user, err := svc.CreateAccount(ctx, "Asha", "asha@x.com", mobile, "p@ss1")
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, models.KYCStatusPending, user.KYCStatus)
	assert.False(t, user.IsVerified)
	assert.True(t, svc.VerifyPassword(user, "p@ss1"))
	assert.False(t, svc.VerifyPassword(user, "p@ss2"))

	_, err = svc.CreateAccount(ctx, "Other", "asha@x.com", "9000000002", "p@ss1")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	_, err = svc.CreateAccount(ctx, "Other", "other@x.com", mobile, "p@ss1")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

// racingUsers lets the pre-checks pass and rejects at insert, like a lost index race
type racingUsers struct {
	*memoryUsers
}

func (r racingUsers) Create(context.Context, *models.User) error {
	return repositories.ErrDuplicateIdentity
}

func TestCredentialService_CreateAccountIndexRace(t *testing.T) {
	svc := NewCredentialService(racingUsers{newMemoryUsers()})

	_, err := svc.CreateAccount(context.Background(), "Asha", "asha@x.com", mobile, "p@ss1")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestCredentialService_StoreFailure(t *testing.T) {
	users := newMemoryUsers()
	users.fail = errors.New("connection refused")
	svc := NewCredentialService(users)

	_, err := svc.CreateAccount(context.Background(), "Asha", "asha@x.com", mobile, "p@ss1")
	require.Error(t, err)
	assert.Empty(t, CodeOf(err))
}

func TestCredentialService_UpdatePassword(t *testing.T) {
	users := newMemoryUsers()
	svc := NewCredentialService(users)
	ctx := context.Background()

	user, err := svc.CreateAccount(ctx, "Asha", "asha@x.com", mobile, "p@ss1")
	require.NoError(t, err)
	require.NoError(t, svc.UpdatePassword(ctx, user, "newPass1"))

	stored, err := svc.FindByMobile(ctx, mobile)
	require.NoError(t, err)
	assert.True(t, svc.VerifyPassword(stored, "newPass1"))
	assert.False(t, svc.VerifyPassword(stored, "p@ss1"))
	assert.Equal(t, user.Email, stored.Email)
	assert.Equal(t, user.FullName, stored.FullName)
}

func TestCredentialService_VerifyPasswordWithoutAccount(t *testing.T) {
	svc := NewCredentialService(newMemoryUsers())

	assert.False(t, svc.VerifyPassword(nil, "p@ss1"))
	assert.False(t, svc.VerifyPassword(&models.User{}, "p@ss1"))
}
