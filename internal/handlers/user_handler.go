package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/models"
	"task-manager-api/internal/services"
)

// UserHandler はユーザー関連のハンドラーを管理します。
type UserHandler struct {
	userService *services.UserService
	jwtService  *services.JWTService
}

// NewUserHandler は新しいUserHandlerを作成します。
func NewUserHandler(userService *services.UserService, jwtService *services.JWTService) *UserHandler {
	return &UserHandler{userService: userService, jwtService: jwtService}
}

// RegisterHandler はユーザー登録を処理します。
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req models.UserRegisterRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	token, err := h.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "user registered successfully", "user": user, "token": token})
}

// LoginHandler はユーザーログインを処理します。
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req models.UserLoginRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	token, err := h.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "login successful", "token": token, "user": user})
}
