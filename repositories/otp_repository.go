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

// OTPRepository keeps one challenge document per (mobile, purpose) in MongoDB.
// Consumption is a single conditional UpdateOne, so concurrent verifications
// of the same code match the document at most once.
type OTPRepository struct {
	collection  *mongo.Collection
	maxAttempts int
	now         func() time.Time
}

func NewOTPRepository(db *mongo.Database, maxAttempts int) *OTPRepository {
	return &OTPRepository{
		collection:  db.Collection(config.OTPChallengesCollection),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Save replaces whatever challenge exists for the key, consumed or not
func (r *OTPRepository) Save(ctx context.Context, ch *models.OTPChallenge) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"mobile": ch.Mobile, "purpose": ch.Purpose}
	update := bson.M{"$set": bson.M{
		"challengeId": ch.ID,
		"codeHash":    ch.CodeHash,
		"attempts":    0,
		"consumed":    false,
		"createdAt":   ch.CreatedAt,
		"expiresAt":   ch.ExpiresAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced on the unique key; the document now exists, so a plain update wins.
		_, err = r.collection.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return fmt.Errorf("save otp challenge: %w", err)
	}
	return nil
}

// Consume marks the live challenge consumed when codeHash matches. A miss
// counts as a failed attempt against the live challenge, if there is one.
func (r *OTPRepository) Consume(ctx context.Context, mobile string, purpose models.OTPPurpose, codeHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := r.now()
	live := bson.M{
		"mobile":    mobile,
		"purpose":   purpose,
		"consumed":  false,
		"expiresAt": bson.M{"$gt": now},
		"attempts":  bson.M{"$lt": r.maxAttempts},
	}

	match := bson.M{"codeHash": codeHash}
	for k, v := range live {
		match[k] = v
	}
	res, err := r.collection.UpdateOne(ctx, match, bson.M{"$set": bson.M{"consumed": true}})
	if err != nil {
		return false, fmt.Errorf("consume otp challenge: %w", err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	if _, err := r.collection.UpdateOne(ctx, live, bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
		return false, fmt.Errorf("record otp attempt: %w", err)
	}
	return false, nil
}

// PurgeExpired deletes challenges past their expiry. The TTL index does the same
// lazily; this exists for deployments that want a deterministic sweep.
func (r *OTPRepository) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$lt": r.now()}},
			bson.M{"consumed": true},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("purge otp challenges: %w", err)
	}
	return res.DeletedCount, nil
}
