package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// FolderController exposes the per-user folder tree.
type FolderController struct {
	folders *services.FolderService
}

// NewFolderController creates a FolderController.
func NewFolderController(folders *services.FolderService) *FolderController {
	return &FolderController{folders: folders}
}

type folderRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// Create adds an empty folder for the caller.
func (f *FolderController) Create(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}

	var req folderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40012, "folder name cannot be empty")
		return
	}

	folder, err := f.folders.Create(name, username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"folder": folder})
}

// List returns the caller's folders with live document counts.
func (f *FolderController) List(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}

	infos, err := f.folders.ListWithCounts(username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"folders": infos})
}

// Rename changes a folder's name.
func (f *FolderController) Rename(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req folderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40014, "folder name cannot be empty")
		return
	}

	folder, err := f.folders.Rename(id, name, username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"folder": folder})
}

// Delete removes an empty folder.
func (f *FolderController) Delete(ctx *gin.Context) {
	username, ok := getUsername(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := f.folders.Delete(id, username); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "folder deleted"})
}
