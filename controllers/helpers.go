package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/middleware"
	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// respondServiceError translates service-layer failures into the uniform JSON
// envelope. Unexpected errors are logged and surface as a generic 500.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "resource not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "you do not own this resource")
	case errors.Is(err, services.ErrDuplicateName):
		utils.Error(ctx, http.StatusConflict, 40901, "folder name already exists")
	case errors.Is(err, services.ErrFolderNotEmpty):
		utils.Error(ctx, http.StatusConflict, 40902, "folder still contains documents")
	case errors.Is(err, services.ErrUsernameTaken):
		utils.Error(ctx, http.StatusConflict, 40903, "username already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
	default:
		if fr, ok := services.IsFileRejected(err); ok {
			utils.Error(ctx, http.StatusBadRequest, 40030, fmt.Sprintf("file rejected: %s", fr.Reason))
			return
		}
		utils.Sugar.Errorf("unexpected service error: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}

func getUsername(ctx *gin.Context) (string, bool) {
	username, ok := middleware.Username(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "unauthorized")
	}
	return username, ok
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	raw := ctx.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

// formUploads turns the multipart "files" parts into service uploads. The
// returned closer must run after the service call; the parts stay open until
// the file store has consumed them.
func formUploads(ctx *gin.Context) ([]services.Upload, func(), error) {
	form, err := ctx.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		// Plain form body, no file parts.
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	headers := form.File["files"]

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}

// parseKeepIDs reads the keep_file_ids form field: a JSON array of attachment
// ids the client wants retained. Absent field means keep nothing.
func parseKeepIDs(ctx *gin.Context) ([]uint, error) {
	raw := strings.TrimSpace(ctx.PostForm("keep_file_ids"))
	if raw == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
