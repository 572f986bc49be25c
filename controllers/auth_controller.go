package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/config"
	"github.com/tdlabs/dms/services"
	"github.com/tdlabs/dms/utils"
)

// AuthController handles signup and login, the only unauthenticated endpoints.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates an AuthController.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
}

// Signup registers a new account.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	user, err := a.users.Register(username, req.Password)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// Login verifies credentials and mints a token for the configured lifetime.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	user, err := a.users.Authenticate(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ttl := time.Duration(config.Get().JWTExpireMinutes) * time.Minute
	token, err := utils.GenerateToken(user.Username, ttl)
	if err != nil {
		utils.Sugar.Errorf("token generation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}
