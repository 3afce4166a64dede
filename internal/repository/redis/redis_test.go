package redis_test

import (
	"context"
	"testing"
	"time"

	cache "yatube/internal/repository/redis"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	c := cache.NewPageCache(rdb, 20*time.Second)

	_, hit, err := c.Get(ctx, "feed:global:page:1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "feed:global:page:1", []byte(`{"items":[]}`)))
	val, hit, err := c.Get(ctx, "feed:global:page:1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"items":[]}`, string(val))

	mr.FastForward(21 * time.Second)
	_, hit, err = c.Get(ctx, "feed:global:page:1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPageCacheClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	c := cache.NewPageCache(rdb, time.Minute)
	require.NoError(t, mr.Set("login:user:token:1", "abc"))

	for _, k := range []string{"feed:global:page:1", "feed:global:page:2"} {
		require.NoError(t, c.Set(ctx, k, []byte("x")))
	}
	require.NoError(t, c.Clear(ctx))

	_, hit, err := c.Get(ctx, "feed:global:page:2")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, mr.Exists("login:user:token:1"))

	require.NoError(t, c.Clear(ctx))
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	r := &cache.TokenRepository{RDB: rdb, TTL: time.Minute}

	_, err := r.GetUserToken(ctx, 7)
	assert.ErrorIs(t, err, cache.ErrTokenNotFound)

	require.NoError(t, r.AddUserToken(ctx, 7, "tok"))
	got, err := r.GetUserToken(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	mr.FastForward(50 * time.Second)
	require.NoError(t, r.ExtendUserToken(ctx, 7))
	mr.FastForward(50 * time.Second)
	_, err = r.GetUserToken(ctx, 7)
	assert.NoError(t, err)

	require.NoError(t, r.DeleteUserToken(ctx, 7))
	_, err = r.GetUserToken(ctx, 7)
	assert.ErrorIs(t, err, cache.ErrTokenNotFound)
}

func TestLikeCache(t *testing.T) {
	ctx := context.Background()
	rdb, _ := testutil.NewRedis(t)
	r := cache.NewLikeCacheRepository(rdb)

	_, hit, err := r.IsLikedCached(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, hit)

	// 计数未回填时不自增
	require.NoError(t, r.AddLike(ctx, 1, 10))
	_, hit, err = r.GetLikeCountCached(ctx, 10)
	require.NoError(t, err)
	assert.False(t, hit)

	liked, hit, err := r.IsLikedCached(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, liked)

	require.NoError(t, r.SetLikeCount(ctx, 10, 1))
	require.NoError(t, r.AddLike(ctx, 2, 10))
	n, hit, err := r.GetLikeCountCached(ctx, 10)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 2, n)

	require.NoError(t, r.RemoveLike(ctx, 1, 10))
	require.NoError(t, r.RemoveLike(ctx, 2, 10))
	require.NoError(t, r.RemoveLike(ctx, 2, 10))
	n, _, err = r.GetLikeCountCached(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	r.WarmIsLiked(ctx, 3, 99, true)
	_, hit, _ = r.IsLikedCached(ctx, 3, 99)
	assert.False(t, hit)

	require.NoError(t, r.DeleteCount(ctx, 10))
	_, hit, _ = r.GetLikeCountCached(ctx, 10)
	assert.False(t, hit)
}

func TestDistLock(t *testing.T) {
	ctx := context.Background()
	rdb, _ := testutil.NewRedis(t)
	l := &cache.DistLock{RDB: rdb}

	ok, err := l.Acquire(ctx, 5, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.Acquire(ctx, 5, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, 5, "b"))
	ok, _ = l.Acquire(ctx, 5, "b")
	assert.False(t, ok, "foreign token must not release the lock")

	require.NoError(t, l.Release(ctx, 5, "a"))
	ok, _ = l.Acquire(ctx, 5, "b")
	assert.True(t, ok)
}
