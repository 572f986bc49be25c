package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// PostController manages forum posts and their search surface.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a PostController.
func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// postInputFromForm reads post fields from a multipart form.
func postInputFromForm(ctx *gin.Context) (services.PostInput, bool) {
	in := services.PostInput{
		Title:   utils.Sanitize(strings.TrimSpace(ctx.PostForm("title"))),
		Content: utils.Sanitize(ctx.PostForm("content")),
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title cannot be empty")
		return in, false
	}
	if in.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40042, "content cannot be empty")
		return in, false
	}
	return in, true
}

// Create publishes a post, with optional attachments.
func (p *PostController) Create(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}

	in, formOK := postInputFromForm(ctx)
	if !formOK {
		return
	}
	uploads, closeUploads, err := formUploads(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid multipart form")
		return
	}
	defer closeUploads()

	detail, err := p.posts.Create(username, in, uploads)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, detail)
}

// Update rewrites a post; the form carries keep_file_ids plus new files.
func (p *PostController) Update(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	in, formOK := postInputFromForm(ctx)
	if !formOK {
		return
	}
	keepIDs, err := parseKeepIDs(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid keep_file_ids")
		return
	}
	uploads, closeUploads, err := formUploads(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid multipart form")
		return
	}
	defer closeUploads()

	detail, err := p.posts.Update(id, username, in, keepIDs, uploads)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, detail)
}

// Delete removes a post with its comments and attachments.
func (p *PostController) Delete(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := p.posts.Delete(id, username); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// Get returns a post detail and bumps its view count.
func (p *PostController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	detail, err := p.posts.Get(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, detail)
}

// List returns paginated posts, newest first.
func (p *PostController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	posts, total, err := p.posts.List(page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// Search matches posts by substring against title, content or both.
func (p *PostController) Search(ctx *gin.Context) {
	keyword := strings.TrimSpace(ctx.Query("keyword"))
	if keyword == "" {
		utils.Error(ctx, http.StatusBadRequest, 40046, "keyword is required")
		return
	}

	field := services.SearchField(ctx.DefaultQuery("searchType", string(services.SearchTitle)))
	switch field {
	case services.SearchTitle, services.SearchContent, services.SearchAll:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40047, "invalid search type")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	posts, total, err := p.posts.Search(keyword, field, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, total),
	})
}
