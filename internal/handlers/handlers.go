package handlers

import (
	"context"
	"net/http"

	"github.com/01moynul/items-api/internal/middleware"
	"github.com/01moynul/items-api/internal/models"
	"github.com/gin-gonic/gin"
)

// ItemStore is the data-access surface the item routes depend on.
type ItemStore interface {
	Insert(ctx context.Context, item *models.Item) (*models.Item, error)
	ListByOwner(ctx context.Context, uid int64) ([]*models.Item, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateOwned(ctx context.Context, id, uid int64, name string) (*models.Item, error)
	SoftDeleteOwned(ctx context.Context, id, uid int64) (bool, error)
}

// UserStore backs registration and login.
type UserStore interface {
	Insert(ctx context.Context, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(uid int64) (string, error)
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Items  ItemStore
	Users  UserStore
	Tokens TokenIssuer
	DB     Pinger
}

// requireUser returns the uid resolved by AuthMiddleware. Routes are only
// mounted behind it, so a miss is answered as unauthorized.
func requireUser(c *gin.Context) (int64, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
		return 0, false
	}
	return uid, true
}

// storageError logs err against the request and hides it from the client.
func storageError(c *gin.Context, msg string, err error) {
	middleware.Logger(c).WithError(err).Error(msg)
	c.String(http.StatusInternalServerError, "internal server error")
}

// Ping is the handler for GET /ping
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong!"})
}

// Health is the handler for GET /health. It fails when the database is unreachable.
func (h *Handlers) Health(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		middleware.Logger(c).WithError(err).Warn("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
