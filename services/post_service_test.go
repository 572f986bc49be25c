package services

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlabs/dms/models"
)

func newPostFixture(t *testing.T) (*PostService, *CommentService) {
	t.Helper()
	db := newTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	files := newTestFileService(t, db)
	return NewPostService(db, files), NewCommentService(db)
}

func TestPostCreateAndGet(t *testing.T) {
	posts, _ := newPostFixture(t)

	detail, err := posts.Create("alice", PostInput{Title: "hello", Content: "world"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.AuthorName)
	assert.Equal(t, int64(0), detail.CommentCount)
	assert.Equal(t, int64(0), detail.Post.ViewCount)

	t.Run("GetIncrementsViewCount", func(t *testing.T) {
		got, err := posts.Get(detail.Post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Post.ViewCount)

		got, err = posts.Get(detail.Post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Post.ViewCount)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := posts.Get(9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostDetailRecentComments(t *testing.T) {
	posts, comments := newPostFixture(t)

	detail, err := posts.Create("alice", PostInput{Title: "busy thread", Content: "x"}, nil)
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		_, err := comments.Create(detail.Post.ID, fmt.Sprintf("reply %d", i), "bob")
		require.NoError(t, err)
	}

	got, err := posts.Get(detail.Post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.CommentCount)
	assert.Len(t, got.RecentComments, 5, "detail embeds only the newest comments")
}

func TestPostUpdate(t *testing.T) {
	posts, _ := newPostFixture(t)

	detail, err := posts.Create("alice", PostInput{Title: "v1", Content: "one"},
		[]Upload{pdfUpload("keep.pdf", "keep"), pdfUpload("drop.pdf", "drop")})
	require.NoError(t, err)
	require.Len(t, detail.Post.Files, 2)

	var keepID uint
	var dropPath string
	for _, f := range detail.Post.Files {
		if f.OriginalName == "keep.pdf" {
			keepID = f.ID
		} else {
			dropPath = f.Path
		}
	}

	t.Run("KeepListReconciliation", func(t *testing.T) {
		updated, err := posts.Update(detail.Post.ID, "alice",
			PostInput{Title: "v2", Content: "two"}, []uint{keepID}, []Upload{pdfUpload("new.pdf", "new")})
		require.NoError(t, err)

		assert.Equal(t, "v2", updated.Post.Title)
		require.Len(t, updated.Post.Files, 2)
		names := []string{updated.Post.Files[0].OriginalName, updated.Post.Files[1].OriginalName}
		assert.ElementsMatch(t, []string{"keep.pdf", "new.pdf"}, names)

		_, err = os.Stat(dropPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("NonAuthorForbidden", func(t *testing.T) {
		_, err := posts.Update(detail.Post.ID, "bob", PostInput{Title: "hijack", Content: "x"}, nil, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPostDeleteCascades(t *testing.T) {
	posts, comments := newPostFixture(t)
	db := posts.db

	detail, err := posts.Create("alice", PostInput{Title: "doomed", Content: "x"},
		[]Upload{pdfUpload("att.pdf", "bytes")})
	require.NoError(t, err)
	postID := detail.Post.ID
	path := detail.Post.Files[0].Path

	_, err = comments.Create(postID, "first", "bob")
	require.NoError(t, err)
	_, err = comments.Create(postID, "second", "alice")
	require.NoError(t, err)

	t.Run("NonAuthorForbidden", func(t *testing.T) {
		assert.ErrorIs(t, posts.Delete(postID, "bob"), ErrForbidden)
	})

	t.Run("AuthorDeleteRemovesEverything", func(t *testing.T) {
		require.NoError(t, posts.Delete(postID, "alice"))

		_, err := posts.Get(postID)
		assert.ErrorIs(t, err, ErrNotFound)

		var cnt int64
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&cnt).Error)
		assert.Equal(t, int64(0), cnt)

		require.NoError(t, db.Model(&models.File{}).Where("post_id = ?", postID).Count(&cnt).Error)
		assert.Equal(t, int64(0), cnt)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestPostListAndSearch(t *testing.T) {
	posts, _ := newPostFixture(t)

	seed := []PostInput{
		{Title: "gopher news", Content: "generics landed"},
		{Title: "release notes", Content: "gopher toolchain"},
		{Title: "offtopic", Content: "lunch plans"},
	}
	for _, in := range seed {
		_, err := posts.Create("alice", in, nil)
		require.NoError(t, err)
	}

	t.Run("ListPaginates", func(t *testing.T) {
		page1, total, err := posts.List(1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, page1, 2)

		page2, total, err := posts.List(2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, page2, 1)
	})

	t.Run("SearchTitle", func(t *testing.T) {
		got, total, err := posts.Search("gopher", SearchTitle, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "gopher news", got[0].Title)
	})

	t.Run("SearchContent", func(t *testing.T) {
		_, total, err := posts.Search("gopher", SearchContent, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("SearchAll", func(t *testing.T) {
		_, total, err := posts.Search("gopher", SearchAll, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("SearchNoMatch", func(t *testing.T) {
		got, total, err := posts.Search("kubernetes", SearchAll, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, got)
	})

	t.Run("InvalidField", func(t *testing.T) {
		_, _, err := posts.Search("x", SearchField("bogus"), 1, 10)
		assert.Error(t, err)
	})
}
