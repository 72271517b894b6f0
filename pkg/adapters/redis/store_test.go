package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunDocumentStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("site-a:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "home", domain.NewDocument("home", nil)))
	assert.True(t, mr.Exists("site-a:doc:home"))
	assert.True(t, mr.Exists("site-a:index"))
	assert.Equal(t, "site-a:", store.Prefix())
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	pageID := "page-ttl"

	// 1. Save
	err := store.Save(ctx, pageID, domain.NewDocument(pageID, nil))
	require.NoError(t, err)

	// 2. Verify List (immediately)
	pages, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, pages, pageID)

	// 3. Fast forward miniredis; the key expires
	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, pageID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"doc:broken", "{not json"))
	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRedisStore_ReservedLookingIDs(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, store.Prefix())
	ctx := context.Background()

	// 1. Regular pages plus ids that spell out the index and lock keys
	ids := []string{"home", "about", "index", "lock:home"}
	for _, id := range ids {
		require.NoError(t, store.Save(ctx, id, domain.NewDocument(id, nil)), "save %s", id)
	}

	// 2. The index survives and lists every page
	pages, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, pages)

	// 3. Holding the lock of "home" leaves the "lock:home" document alone
	unlock, err := locker.Lock(ctx, "home", 5*time.Second)
	require.NoError(t, err)
	doc, err := store.Load(ctx, "lock:home")
	require.NoError(t, err)
	assert.Equal(t, "lock:home", doc.ID)
	require.NoError(t, unlock(ctx))

	loaded, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", loaded.ID)
	assert.True(t, mr.Exists(redis.DefaultPrefix+"doc:index"))

	// 4. Deleting the "index" page keeps the others listed
	require.NoError(t, store.Delete(ctx, "index"))
	pages, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"home", "about", "lock:home"}, pages)
}
