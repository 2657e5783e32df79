package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Set MONGO_TEST_URI (e.g. mongodb://localhost:27017) to run against a live server.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()

	client, err := ConnectMongo(ctx, uri, zap.NewNop())
	require.NoError(t, err)
	db := client.Database("pos_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	s := NewMongoStore(db)
	require.NoError(t, s.EnsureIndexes(ctx))
	runStoreContract(t, s)
}
