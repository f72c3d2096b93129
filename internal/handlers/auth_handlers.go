package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/items-api/internal/database"
	"github.com/01moynul/items-api/internal/middleware"
	"github.com/01moynul/items-api/internal/models"
	"github.com/gin-gonic/gin"
)

// CredentialsInput is the JSON body of both register and login.
// It is separate from models.User so clients cannot send an id.
type CredentialsInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register is the handler for POST /auth/register
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	err := password.Set(input.Password)
	if errors.Is(err, models.ErrPasswordTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		middleware.Logger(c).WithError(err).Error("hash password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Save to Database ---
	user, err := h.Users.Insert(c.Request.Context(), normalizeEmail(input.Email), password.Hash)
	if errors.Is(err, database.ErrDuplicateEmail) {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}
	if err != nil {
		middleware.Logger(c).WithError(err).Error("register user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	// 4. --- Issue Token ---
	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("generate token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login is the handler for POST /auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), normalizeEmail(input.Email))
	if err != nil {
		middleware.Logger(c).WithError(err).Error("find user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("compare password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("generate token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
