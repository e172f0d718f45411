package repositories

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/HSouheill/simstore_backend/models"
)

var consumeResetTokenScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisResetTokenRepository maps a mobile to the hash of its only live reset token
type RedisResetTokenRepository struct {
	client *redis.Client
}

func NewRedisResetTokenRepository(client *redis.Client) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

func resetTokenKey(mobile string) string {
	return "reset_token:" + mobile
}

func (r *RedisResetTokenRepository) Save(ctx context.Context, token *models.ResetToken) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ttl := token.ExpiresAt.Sub(token.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("save reset token: non-positive ttl")
	}
	if err := r.client.Set(ctx, resetTokenKey(token.Mobile), token.TokenHash, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

func (r *RedisResetTokenRepository) Consume(ctx context.Context, mobile, tokenHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := consumeResetTokenScript.Run(ctx, r.client, []string{resetTokenKey(mobile)}, tokenHash).Int()
	if err != nil {
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return n == 1, nil
}
