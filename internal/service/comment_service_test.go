package service

import (
	"context"
	"testing"

	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewCommentService(db)
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")
	p := newPosts(t, db, leo.ID, nil, 1)[0]

	_, err := svc.CreateComment(ctx, 0, p.ID, "hi")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.CreateComment(ctx, ann.ID, p.ID+1, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CreateComment(ctx, ann.ID, p.ID, "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "text", ve.Field)

	c, err := svc.CreateComment(ctx, ann.ID, p.ID, "nice post")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, c.AuthorID)
	assert.Equal(t, p.ID, c.PostID)
	assert.Equal(t, "ann", c.Author.Username)

	_, err = svc.UpdateComment(ctx, leo.ID, p.ID, c.ID, "edited by leo")
	assert.ErrorIs(t, err, ErrForbidden)
	updated, err := svc.UpdateComment(ctx, ann.ID, p.ID, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	list, err := svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.ListComments(ctx, p.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteComment(ctx, leo.ID, p.ID, c.ID), ErrForbidden)
	require.NoError(t, svc.DeleteComment(ctx, ann.ID, p.ID, c.ID))
	_, err = svc.GetComment(ctx, p.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
