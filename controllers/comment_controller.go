package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// CommentController manages replies on posts.
type CommentController struct {
	comments *services.CommentService
}

// NewCommentController creates a CommentController.
func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type createCommentRequest struct {
	PostID  uint   `json:"post_id" binding:"required"`
	Content string `json:"content" binding:"required,min=1"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// ListByPost returns every comment on a post.
func (c *CommentController) ListByPost(ctx *gin.Context) {
	postID, ok := parseID(ctx, "postId")
	if !ok {
		return
	}

	comments, err := c.comments.ListByPost(postID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// Create adds a comment to a post.
func (c *CommentController) Create(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}

	comment, err := c.comments.Create(req.PostID, utils.Sanitize(req.Content), username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// Update rewrites a comment's content.
func (c *CommentController) Update(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	comment, err := c.comments.Update(id, utils.Sanitize(req.Content), username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// Delete removes a comment.
func (c *CommentController) Delete(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.comments.Delete(id, username); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
