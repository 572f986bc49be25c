package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tdlabs/dms/config"
	"github.com/tdlabs/dms/middleware"
	"github.com/tdlabs/dms/models"
	"github.com/tdlabs/dms/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:        "test-secret",
		JWTExpireMinutes: 60,
	})
}

func newAPITestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.Document{},
		&models.Post{},
		&models.Comment{},
		&models.File{},
	))

	auth := NewAuthController(services.NewUserService(db))
	folders := NewFolderController(services.NewFolderService(db))

	r := gin.New()
	r.POST("/api/v1/auth/signup", auth.Signup)
	r.POST("/api/v1/auth/login", auth.Login)

	protected := r.Group("/api/v1", middleware.AuthRequired())
	protected.POST("/folders", folders.Create)
	protected.GET("/folders", folders.List)
	return r
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSignupLoginFlow(t *testing.T) {
	r := newAPITestRouter(t)

	t.Run("SignupValidationRejectsShortPassword", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/auth/signup", "",
			`{"username":"alice","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Signup", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/auth/signup", "",
			`{"username":"alice","password":"long-enough-pass"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "long-enough-pass")
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("DuplicateSignupConflicts", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/auth/signup", "",
			`{"username":"alice","password":"long-enough-pass"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/auth/login", "",
			`{"username":"alice","password":"wrong-password"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("LoginAndUseToken", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/auth/login", "",
			`{"username":"alice","password":"long-enough-pass"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Token    string `json:"token"`
				Username string `json:"username"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Data.Token)
		assert.Equal(t, "alice", resp.Data.Username)

		// Token works against a protected route.
		w = doJSON(r, http.MethodPost, "/api/v1/folders", resp.Data.Token, `{"name":"Inbox"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/api/v1/folders", resp.Data.Token, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Inbox")
	})

	t.Run("ProtectedRouteWithoutToken", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/folders", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
