package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	posts, comments := newPostFixture(t)

	detail, err := posts.Create("alice", PostInput{Title: "thread", Content: "op"}, nil)
	require.NoError(t, err)
	postID := detail.Post.ID

	t.Run("CreateOnMissingPost", func(t *testing.T) {
		_, err := comments.Create(9999, "hello", "bob")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateAndListOldestFirst", func(t *testing.T) {
		first, err := comments.Create(postID, "first", "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", first.Author.Username)

		_, err = comments.Create(postID, "second", "alice")
		require.NoError(t, err)

		got, err := comments.ListByPost(postID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Content)
		assert.Equal(t, "second", got[1].Content)
	})

	t.Run("ListMissingPost", func(t *testing.T) {
		_, err := comments.ListByPost(9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommentAuthorOnlyMutation(t *testing.T) {
	posts, comments := newPostFixture(t)

	detail, err := posts.Create("alice", PostInput{Title: "thread", Content: "op"}, nil)
	require.NoError(t, err)

	comment, err := comments.Create(detail.Post.ID, "original", "bob")
	require.NoError(t, err)

	t.Run("UpdateByNonAuthor", func(t *testing.T) {
		_, err := comments.Update(comment.ID, "edited", "alice")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("UpdateByAuthor", func(t *testing.T) {
		updated, err := comments.Update(comment.ID, "edited", "bob")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
	})

	t.Run("DeleteByNonAuthor", func(t *testing.T) {
		assert.ErrorIs(t, comments.Delete(comment.ID, "alice"), ErrForbidden)
	})

	t.Run("DeleteByAuthor", func(t *testing.T) {
		require.NoError(t, comments.Delete(comment.ID, "bob"))
		_, err := comments.Update(comment.ID, "ghost", "bob")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
