package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/models"
	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// DocumentController exposes document lifecycle and the owner-scoped listings.
type DocumentController struct {
	documents *services.DocumentService
}

// NewDocumentController creates a DocumentController.
func NewDocumentController(documents *services.DocumentService) *DocumentController {
	return &DocumentController{documents: documents}
}

type documentJSONRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Content  string `json:"content" binding:"required"`
	FolderID *uint  `json:"folder_id"`
	Starred  bool   `json:"starred"`
}

// documentInputFromForm reads document fields from a multipart form.
func documentInputFromForm(ctx *gin.Context) (services.DocumentInput, bool) {
	in := services.DocumentInput{
		Title:   utils.Sanitize(strings.TrimSpace(ctx.PostForm("title"))),
		Content: utils.Sanitize(ctx.PostForm("content")),
	}
	if in.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return in, false
	}
	if raw := strings.TrimSpace(ctx.PostForm("folder_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid folder id")
			return in, false
		}
		fid := uint(id)
		in.FolderID = &fid
	}
	if raw := strings.TrimSpace(ctx.PostForm("starred")); raw != "" {
		starred, err := strconv.ParseBool(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid starred flag")
			return in, false
		}
		in.Starred = starred
	}
	return in, true
}

// Create accepts either a multipart form with attachments or a plain JSON body.
func (d *DocumentController) Create(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}

	var in services.DocumentInput
	var uploads []services.Upload
	closeUploads := func() {}

	if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		var formOK bool
		in, formOK = documentInputFromForm(ctx)
		if !formOK {
			return
		}
		var err error
		uploads, closeUploads, err = formUploads(ctx)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40024, "invalid multipart form")
			return
		}
	} else {
		var req documentJSONRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
			return
		}
		in = services.DocumentInput{
			Title:    utils.Sanitize(strings.TrimSpace(req.Title)),
			Content:  utils.Sanitize(req.Content),
			FolderID: req.FolderID,
			Starred:  req.Starred,
		}
	}
	defer closeUploads()

	doc, err := d.documents.Create(username, in, uploads)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"document": doc})
}

// Update rewrites a document. The multipart form carries the complete desired
// file set: keep_file_ids plus any new files.
func (d *DocumentController) Update(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	in, formOK := documentInputFromForm(ctx)
	if !formOK {
		return
	}
	keepIDs, err := parseKeepIDs(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid keep_file_ids")
		return
	}
	uploads, closeUploads, err := formUploads(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid multipart form")
		return
	}
	defer closeUploads()

	doc, err := d.documents.Update(id, username, in, keepIDs, uploads)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"document": doc})
}

// Get returns one document with its full file set.
func (d *DocumentController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	doc, err := d.documents.Get(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"document": doc})
}

// Delete removes a document and its attachments.
func (d *DocumentController) Delete(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := d.documents.Delete(id, username); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "document deleted"})
}

// List returns all of the caller's documents.
func (d *DocumentController) List(ctx *gin.Context) {
	d.respondList(ctx, d.documents.ListAll)
}

// ListStarred returns the caller's starred documents.
func (d *DocumentController) ListStarred(ctx *gin.Context) {
	d.respondList(ctx, d.documents.ListStarred)
}

// ListRecent returns the caller's documents from the trailing 30 days.
func (d *DocumentController) ListRecent(ctx *gin.Context) {
	d.respondList(ctx, d.documents.ListRecent)
}

// ListByFolder returns the caller's documents filed in one folder.
func (d *DocumentController) ListByFolder(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	folderID, ok := parseID(ctx, "folderId")
	if !ok {
		return
	}

	docs, err := d.documents.ListByFolder(username, folderID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"documents": docs})
}

func (d *DocumentController) respondList(ctx *gin.Context, list func(string) ([]models.Document, error)) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	docs, err := list(username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"documents": docs})
}
