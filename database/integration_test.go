package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// exerciseStore checks the shared ImageStore contract against a backend
// that starts out empty.
func exerciseStore(t *testing.T, store ImageStore) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, store.Ping(ctx))

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		stored, err := store.Create(ctx, newRecord(fmt.Sprintf("it%d", i), base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
		require.NotEmpty(t, stored.ID)
	}

	records, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "it2.png", records[0].OriginalName)
	assert.Equal(t, "it0.png", records[2].OriginalName)
}

func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	dbName := "image_upload_test_" + uuid.NewString()[:8]
	store, err := OpenMongo(ctx, uri, dbName, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.client.Database(dbName).Drop(ctx)
		_ = store.Close(ctx)
	})

	exerciseStore(t, store)
}

func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.db.Exec("DELETE FROM images").Error)
	t.Cleanup(func() {
		_ = store.db.Exec("DELETE FROM images").Error
		_ = store.Close(ctx)
	})

	exerciseStore(t, store)
}

func TestBadgerStoreContract(t *testing.T) {
	exerciseStore(t, memoryStore(t))
}
