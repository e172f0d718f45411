package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/HSouheill/simstore_backend/models"
)

// These run against the driver's mock deployment, so the Mongo stores are
// exercised on every test run; semantics against a real server are covered
// by the MONGO_TEST_URI tests.

func updated(n, modified int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: modified})
}

func updateSpec(t *testing.T, evt *event.CommandStartedEvent, path ...string) bson.RawValue {
	t.Helper()
	require.Equal(t, "update", evt.CommandName)
	val, err := evt.Command.LookupErr(append([]string{"updates", "0"}, path...)...)
	require.NoError(t, err, "missing %v in %s", path, evt.Command)
	return val
}

func TestOTPRepository_MongoMock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("match consumes", func(mt *mtest.T) {
		repo := NewOTPRepository(mt.DB, 5)
		mt.AddMockResponses(updated(1, 1))

		ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "h1")
		require.NoError(mt, err)
		assert.True(mt, ok)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 1)
		assert.Equal(mt, "h1", updateSpec(mt.T, events[0], "q", "codeHash").StringValue())
		assert.False(mt, updateSpec(mt.T, events[0], "q", "consumed").Boolean())
		assert.Equal(mt, int32(5), updateSpec(mt.T, events[0], "q", "attempts", "$lt").Int32())
		assert.True(mt, updateSpec(mt.T, events[0], "u", "$set", "consumed").Boolean())
	})

	mt.Run("miss records an attempt", func(mt *mtest.T) {
		repo := NewOTPRepository(mt.DB, 5)
		mt.AddMockResponses(updated(0, 0), updated(1, 1))

		ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposePasswordReset, "wrong")
		require.NoError(mt, err)
		assert.False(mt, ok)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		_, err = events[1].Command.LookupErr("updates", "0", "q", "codeHash")
		assert.Error(mt, err, "the attempt counter applies to the live challenge whatever the code")
		assert.Equal(mt, int32(1), updateSpec(mt.T, events[1], "u", "$inc", "attempts").Int32())
	})

	mt.Run("already consumed by a concurrent verify", func(mt *mtest.T) {
		repo := NewOTPRepository(mt.DB, 5)
		// Matched nothing live: the other verifier flipped consumed first
		mt.AddMockResponses(updated(0, 0), updated(0, 0))

		ok, err := repo.Consume(ctx, "9000000001", models.OTPPurposeSignup, "h1")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewOTPRepository(mt.DB, 5)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"}))

		_, err := repo.Consume(ctx, "9000000001", models.OTPPurposeSignup, "h1")
		assert.Error(mt, err)
	})

	mt.Run("save retries a lost upsert race", func(mt *mtest.T) {
		repo := NewOTPRepository(mt.DB, 5)
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key"}),
			updated(1, 1),
		)

		now := time.Now()
		err := repo.Save(ctx, &models.OTPChallenge{
			ID: "c1", Mobile: "9000000001", Purpose: models.OTPPurposeSignup, CodeHash: "h1",
			CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
		})
		require.NoError(mt, err)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		assert.True(mt, updateSpec(mt.T, events[0], "upsert").Boolean())
		assert.Equal(mt, int32(0), updateSpec(mt.T, events[1], "u", "$set", "attempts").Int32())
	})
}

func TestResetTokenRepository_MongoMock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("consume once", func(mt *mtest.T) {
		repo := NewResetTokenRepository(mt.DB)
		mt.AddMockResponses(updated(1, 1), updated(0, 0))

		ok, err := repo.Consume(ctx, "9000000001", "t1")
		require.NoError(mt, err)
		assert.True(mt, ok)

		ok, err = repo.Consume(ctx, "9000000001", "t1")
		require.NoError(mt, err)
		assert.False(mt, ok)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		assert.Equal(mt, "9000000001", updateSpec(mt.T, events[0], "q", "mobile").StringValue())
		assert.Equal(mt, "t1", updateSpec(mt.T, events[0], "q", "tokenHash").StringValue())
		assert.False(mt, updateSpec(mt.T, events[0], "q", "consumed").Boolean())
	})
}
