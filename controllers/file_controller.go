package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// FileController handles standalone uploads and downloads.
type FileController struct {
	files *services.FileService
}

// NewFileController creates a FileController.
func NewFileController(files *services.FileService) *FileController {
	return &FileController{files: files}
}

// Upload stores a file without attaching it to a document or post.
// The returned id can be referenced by a later create or update.
func (c *FileController) Upload(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "missing file field")
		return
	}
	src, err := header.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "unreadable upload")
		return
	}
	defer src.Close()

	file, err := c.files.SaveStandalone(username, services.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     src,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"file": file})
}

// Download streams a stored file back to the client under its original name.
func (c *FileController) Download(ctx *gin.Context) {
	if _, ok := getUsername(ctx); !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	file, err := c.files.Get(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if _, err := os.Stat(file.Path); err != nil {
		utils.Logger.Warn("stored file missing on disk")
		utils.Error(ctx, http.StatusNotFound, 40402, "file content not found")
		return
	}
	ctx.FileAttachment(file.Path, file.OriginalName)
}

// Delete removes an uploaded file and its bytes.
func (c *FileController) Delete(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.files.Delete(id, username); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "file deleted"})
}
