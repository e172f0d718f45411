package repositories

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/HSouheill/simstore_backend/models"
)

// consumeChallengeScript deletes the challenge on a matching code and returns 1.
// A mismatch bumps the attempt counter and burns the challenge once the limit is reached.
var consumeChallengeScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'codeHash')
if not stored then
	return 0
end
if stored == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if attempts >= tonumber(ARGV[2]) then
	redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisOTPRepository keeps one challenge hash per (mobile, purpose); Redis key
// expiry enforces the TTL.
type RedisOTPRepository struct {
	client      *redis.Client
	maxAttempts int
}

func NewRedisOTPRepository(client *redis.Client, maxAttempts int) *RedisOTPRepository {
	return &RedisOTPRepository{client: client, maxAttempts: maxAttempts}
}

func challengeKey(mobile string, purpose models.OTPPurpose) string {
	return fmt.Sprintf("otp:%s:%s", purpose, mobile)
}

// Save overwrites any previous challenge for the key in one MULTI/EXEC
func (r *RedisOTPRepository) Save(ctx context.Context, ch *models.OTPChallenge) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ttl := ch.ExpiresAt.Sub(ch.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("save otp challenge: non-positive ttl")
	}
	key := challengeKey(ch.Mobile, ch.Purpose)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"challengeId", ch.ID,
			"codeHash", ch.CodeHash,
			"attempts", 0,
			"createdAt", ch.CreatedAt.Unix(),
		)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp challenge: %w", err)
	}
	return nil
}

func (r *RedisOTPRepository) Consume(ctx context.Context, mobile string, purpose models.OTPPurpose, codeHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := consumeChallengeScript.Run(ctx, r.client, []string{challengeKey(mobile, purpose)}, codeHash, r.maxAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("consume otp challenge: %w", err)
	}
	return n == 1, nil
}
