package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/simstore_backend/config"
	"github.com/HSouheill/simstore_backend/models"
)

// ResetTokenRepository stores at most one reset token per mobile in MongoDB
type ResetTokenRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewResetTokenRepository(db *mongo.Database) *ResetTokenRepository {
	return &ResetTokenRepository{
		collection: db.Collection(config.ResetTokensCollection),
		now:        time.Now,
	}
}

func (r *ResetTokenRepository) Save(ctx context.Context, token *models.ResetToken) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"mobile": token.Mobile}
	update := bson.M{"$set": bson.M{
		"tokenId":   token.ID,
		"tokenHash": token.TokenHash,
		"consumed":  false,
		"createdAt": token.CreatedAt,
		"expiresAt": token.ExpiresAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.collection.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume flips consumed to true only for an unexpired, unconsumed token bound to mobile
func (r *ResetTokenRepository) Consume(ctx context.Context, mobile, tokenHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{
		"mobile":    mobile,
		"tokenHash": tokenHash,
		"consumed":  false,
		"expiresAt": bson.M{"$gt": r.now()},
	}, bson.M{"$set": bson.M{"consumed": true}})
	if err != nil {
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
