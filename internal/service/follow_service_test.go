package service

import (
	"context"
	"testing"

	"yatube/internal/model"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowSilentNoops(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")

	assert.ErrorIs(t, svc.Follow(ctx, 0, "leo"), ErrUnauthorized)
	assert.ErrorIs(t, svc.Follow(ctx, ann.ID, "ghost"), ErrNotFound)

	require.NoError(t, svc.Follow(ctx, leo.ID, "leo"))
	require.NoError(t, svc.Follow(ctx, ann.ID, "leo"))
	require.NoError(t, svc.Follow(ctx, ann.ID, "leo"))

	var edges []model.Follow
	require.NoError(t, db.Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, ann.ID, edges[0].UserID)
	assert.Equal(t, leo.ID, edges[0].AuthorID)

	ok, err := svc.IsFollowing(ctx, ann.ID, leo.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsFollowing(ctx, 0, leo.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnfollow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	newUser(t, db, "leo")
	ann := newUser(t, db, "ann")

	assert.ErrorIs(t, svc.Unfollow(ctx, ann.ID, "leo"), ErrNotFound)
	require.NoError(t, svc.Follow(ctx, ann.ID, "leo"))
	require.NoError(t, svc.Unfollow(ctx, ann.ID, "leo"))
	assert.ErrorIs(t, svc.Unfollow(ctx, ann.ID, "leo"), ErrNotFound)
	assert.ErrorIs(t, svc.Unfollow(ctx, ann.ID, "ghost"), ErrNotFound)
}

func TestFollowStrict(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")

	f, err := svc.FollowStrict(ctx, ann.ID, "leo")
	require.NoError(t, err)
	assert.Equal(t, "ann", f.User.Username)
	assert.Equal(t, "leo", f.Author.Username)

	var ve *ValidationError
	_, err = svc.FollowStrict(ctx, ann.ID, "leo")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "This follow already exists.", ve.Message)

	_, err = svc.FollowStrict(ctx, leo.ID, "leo")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "You cannot follow yourself.", ve.Message)

	_, err = svc.FollowStrict(ctx, leo.ID, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "author", ve.Field)

	_, err = svc.FollowStrict(ctx, leo.ID, "ghost")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "author", ve.Field)

	var n int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestListFollowers(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	leo := newUser(t, db, "leo")
	for _, name := range []string{"anna", "bob"} {
		u := newUser(t, db, name)
		require.NoError(t, svc.Follow(ctx, u.ID, "leo"))
	}

	_, err := svc.ListFollowers(ctx, 0, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	all, err := svc.ListFollowers(ctx, leo.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bob, err := svc.ListFollowers(ctx, leo.ID, "bo")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "bob", bob[0].User.Username)
}
