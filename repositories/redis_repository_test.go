package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/simstore_backend/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func challenge(mobile, hash string, ttl time.Duration) *models.OTPChallenge {
	now := time.Now()
	return &models.OTPChallenge{
		ID:        "ch-" + hash,
		Mobile:    mobile,
		Purpose:   models.OTPPurposePasswordReset,
		CodeHash:  hash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestRedisOTPRepository_ConsumeOnce(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisOTPRepository(client, 5)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "h1", time.Minute)))

	ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "h1")
	require.NoError(t, err)
	assert.False(t, ok, "second consume must fail")
}

func TestRedisOTPRepository_SaveReplacesPrevious(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisOTPRepository(client, 5)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "first", time.Minute)))
	require.NoError(t, repo.Save(ctx, challenge("9000000001", "second", time.Minute)))

	ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "first")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "second")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisOTPRepository_PurposeIsolation(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisOTPRepository(client, 5)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "h1", time.Minute)))

	ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposeSignup, "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisOTPRepository_Expiry(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewRedisOTPRepository(client, 5)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "h1", time.Minute)))
	mr.FastForward(time.Minute + time.Second)

	ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisOTPRepository_AttemptLimit(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisOTPRepository(client, 3)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "good", time.Minute)))

	// Misses below the limit leave the challenge usable
	for i := 0; i < 2; i++ {
		ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "bad")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "good")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "good", time.Minute)))
	for i := 0; i < 3; i++ {
		ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "bad")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	// The third miss burned it
	ok, err = repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "good")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisOTPRepository_ConcurrentConsume(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisOTPRepository(client, 5)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, challenge("9000000001", "h1", time.Minute)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "h1")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func resetToken(mobile, hash string, ttl time.Duration) *models.ResetToken {
	now := time.Now()
	return &models.ResetToken{
		ID:        "rt-" + hash,
		Mobile:    mobile,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestRedisResetTokenRepository(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewRedisResetTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, resetToken("9000000001", "t1", time.Minute)))

	ok, err := repo.Consume(ctx, "9000000002", "t1")
	require.NoError(t, err)
	assert.False(t, ok, "token is bound to its mobile")

	ok, err = repo.Consume(ctx, "9000000001", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "9000000001", "t1")
	require.NoError(t, err)
	assert.False(t, ok, "token is single use")

	require.NoError(t, repo.Save(ctx, resetToken("9000000001", "t2", time.Minute)))
	mr.FastForward(2 * time.Minute)
	ok, err = repo.Consume(ctx, "9000000001", "t2")
	require.NoError(t, err)
	assert.False(t, ok, "expired token")
}
