package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"yatube/internal/pkg"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 透明 GIF
var tinyGIF, _ = base64.StdEncoding.DecodeString("R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

func uploadHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewPostService(db, pkg.NewMediaStore(t.TempDir()))
	leo := newUser(t, db, "leo")

	_, err := svc.CreatePost(ctx, 0, PostInput{Text: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreatePost(ctx, leo.ID, PostInput{Text: "   "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "text", ve.Field)

	missing := uint64(42)
	_, err = svc.CreatePost(ctx, leo.ID, PostInput{Text: "hi", GroupID: &missing})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "group", ve.Field)

	g := newGroup(t, db, "cats")
	p, err := svc.CreatePost(ctx, leo.ID, PostInput{Text: "hi", GroupID: &g.ID})
	require.NoError(t, err)
	assert.Equal(t, leo.ID, p.AuthorID)
	assert.Equal(t, "leo", p.Author.Username)
	require.NotNil(t, p.Group)
	assert.Equal(t, "cats", p.Group.Slug)
}

func TestCreatePostWithImage(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	root := t.TempDir()
	svc := NewPostService(db, pkg.NewMediaStore(root))
	leo := newUser(t, db, "leo")

	p, err := svc.CreatePost(ctx, leo.ID, PostInput{Text: "pic", Image: uploadHeader(t, "a.gif", tinyGIF)})
	require.NoError(t, err)
	require.NotEmpty(t, p.Image)
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p.Image)))
	assert.NoError(t, err)

	_, err = svc.CreatePost(ctx, leo.ID, PostInput{Text: "txt", Image: uploadHeader(t, "a.gif", []byte("plain text"))})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "image", ve.Field)

	// 不上传新图时保留旧图
	text := "edited"
	updated, err := svc.UpdatePost(ctx, leo.ID, p.ID, PostUpdate{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, p.Image, updated.Image)

	replaced, err := svc.UpdatePost(ctx, leo.ID, p.ID, PostUpdate{Image: uploadHeader(t, "b.gif", tinyGIF)})
	require.NoError(t, err)
	assert.NotEqual(t, p.Image, replaced.Image)
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p.Image)))
	assert.True(t, os.IsNotExist(err), "old image removed")

	require.NoError(t, svc.DeletePost(ctx, leo.ID, p.ID))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(replaced.Image)))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdatePostOwnership(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewPostService(db, pkg.NewMediaStore(t.TempDir()))
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")
	p, err := svc.CreatePost(ctx, leo.ID, PostInput{Text: "original"})
	require.NoError(t, err)

	text := "hijacked"
	_, err = svc.UpdatePost(ctx, ann.ID, p.ID, PostUpdate{Text: &text})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "original", postText(t, db, p.ID))

	_, err = svc.UpdatePost(ctx, 0, p.ID, PostUpdate{Text: &text})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.UpdatePost(ctx, leo.ID, p.ID+100, PostUpdate{Text: &text})
	assert.ErrorIs(t, err, ErrNotFound)

	blank := " "
	_, err = svc.UpdatePost(ctx, leo.ID, p.ID, PostUpdate{Text: &blank})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	g := newGroup(t, db, "cats")
	text = "mine"
	updated, err := svc.UpdatePost(ctx, leo.ID, p.ID, PostUpdate{Text: &text, GroupID: &g.ID})
	require.NoError(t, err)
	assert.Equal(t, "mine", updated.Text)
	assert.Equal(t, leo.ID, updated.AuthorID)
	require.NotNil(t, updated.GroupID)

	cleared, err := svc.UpdatePost(ctx, leo.ID, p.ID, PostUpdate{ClearGroup: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.GroupID)
	assert.Equal(t, "mine", cleared.Text)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewPostService(db, pkg.NewMediaStore(t.TempDir()))
	leo := newUser(t, db, "leo")
	ann := newUser(t, db, "ann")
	p, err := svc.CreatePost(ctx, leo.ID, PostInput{Text: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePost(ctx, ann.ID, p.ID), ErrForbidden)
	require.NoError(t, svc.DeletePost(ctx, leo.ID, p.ID))
	_, err = svc.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeletePost(ctx, leo.ID, p.ID), ErrNotFound)
}

func TestListPostsByGroup(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewPostService(db, pkg.NewMediaStore(t.TempDir()))
	leo := newUser(t, db, "leo")
	g := newGroup(t, db, "cats")
	newPosts(t, db, leo.ID, &g.ID, 2)
	newPosts(t, db, leo.ID, nil, 13)

	all, err := svc.ListPosts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 15)

	cats, err := svc.ListPosts(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}
