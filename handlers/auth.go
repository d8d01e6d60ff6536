package handlers

import (
	"errors"
	"net/http"
	"strings"

	"waysfood-api/apperr"
	"waysfood-api/middleware"
	"waysfood-api/models"
	"waysfood-api/repository"
	"waysfood-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	FullName string          `json:"fullName" binding:"required,min=3,max=40"`
	Email    string          `json:"email" binding:"required,email,max=60"`
	Password string          `json:"password" binding:"required,min=8,max=50"`
	Gender   string          `json:"gender"`
	Phone    string          `json:"phone" binding:"omitempty,min=10,max=15"`
	Location string          `json:"location"`
	Role     models.UserRole `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUser is a user view carrying a freshly issued access token.
type AuthUser struct {
	UserView
	Token string `json:"token"`
}

type AuthHandler struct {
	users  repository.UserRepository
	tokens *middleware.TokenManager
	images storage.Store
	logger *zap.Logger
}

func NewAuthHandler(users repository.UserRepository, tokens *middleware.TokenManager, images storage.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, images: images, logger: logger}
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	if !req.Role.Valid() {
		respondError(c, h.logger, apperr.Validation(`role must be "user" or "partner"`))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx := c.Request.Context()
	_, err := h.users.FindByEmail(ctx, email)
	if err == nil {
		respondError(c, h.logger, apperr.Validation("email has already existed"))
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}

	user := models.User{
		FullName: req.FullName,
		Email:    email,
		Password: string(hash),
		Gender:   req.Gender,
		Phone:    req.Phone,
		Location: req.Location,
		Role:     req.Role,
	}
	if err := h.users.Create(ctx, &user); err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}

	h.logger.Info("User registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	h.respondWithToken(c, http.StatusOK, "resource has been registered", &user)
}

// Login authenticates a user and returns a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, h.logger, apperr.NotFound("resource is not found"))
		return
	}
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, h.logger, apperr.Authentication("your credentials is not valid"))
		return
	}

	h.respondWithToken(c, http.StatusOK, "your credentials is valid", user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, code int, message string, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	success(c, code, message, gin.H{"user": AuthUser{UserView: newUserView(user, h.images), Token: token}})
}
