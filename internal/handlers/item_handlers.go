package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/01moynul/items-api/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateItemInput defines the JSON input for creating an item.
type CreateItemInput struct {
	Name      string `json:"name" binding:"required"`
	IsDeleted bool   `json:"is_deleted"`
}

// UpdateItemInput defines the JSON input for updating an item.
// is_deleted is accepted for payload compatibility but may only be false;
// deletion goes through DELETE /items/:id.
type UpdateItemInput struct {
	Name      string `json:"name" binding:"required"`
	IsDeleted *bool  `json:"is_deleted"`
}

// missMessages are the texts used when a single-item request does not
// reach a live item owned by the caller.
type missMessages struct {
	notFound  string
	forbidden string
}

// CreateItem is the handler for POST /items
func (h *Handlers) CreateItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.String(http.StatusBadRequest, "Invalid item: %s", err.Error())
		return
	}
	item := models.NewItem(0, input.Name, input.IsDeleted, uid)
	if item.Name == "" {
		c.String(http.StatusBadRequest, "Invalid item: name must not be blank")
		return
	}

	// 2. --- Save to Database ---
	created, err := h.Items.Insert(c.Request.Context(), item)
	if err != nil {
		storageError(c, "create item failed", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetMyItems is the handler for GET /items
// It lists the caller's items that are not soft-deleted.
func (h *Handlers) GetMyItems(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.Items.ListByOwner(c.Request.Context(), uid)
	if err != nil {
		storageError(c, "list items failed", err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}

	c.JSON(http.StatusOK, items)
}

// GetItem is the handler for GET /items/:id
func (h *Handlers) GetItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseItemID(c, "Item id %s not found")
	if !ok {
		return
	}

	item, err := h.Items.FindByID(c.Request.Context(), id)
	if err != nil {
		storageError(c, "find item failed", err)
		return
	}
	if item == nil {
		c.String(http.StatusBadRequest, "Item id %d not found", id)
		return
	}
	if !item.OwnedBy(uid) {
		c.String(http.StatusForbidden, "Item id %d doesn't belong to user id %d", id, uid)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem is the handler for PUT /items/:id
// The rename is a single statement filtered by id and owner; the follow-up
// lookup only decides which error to report.
func (h *Handlers) UpdateItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseItemID(c, "Item id %s not found, cannot be updated")
	if !ok {
		return
	}
	msgs := missMessages{
		notFound:  fmt.Sprintf("Item id %d not found, cannot be updated", id),
		forbidden: fmt.Sprintf("Item id %d cannot be modified by user id %d", id, uid),
	}

	// 1. --- Bind & Validate JSON ---
	// A rejected body is reported only to the owner; anyone else gets the
	// same 400/403 an acceptable body would have produced.
	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		if h.checkOwner(c, id, uid, msgs) {
			c.String(http.StatusBadRequest, "Invalid item: %s", err.Error())
		}
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		if h.checkOwner(c, id, uid, msgs) {
			c.String(http.StatusBadRequest, "Invalid item: name must not be blank")
		}
		return
	}

	// 2. --- Reject deletion through update ---
	if input.IsDeleted != nil && *input.IsDeleted {
		if !h.checkOwner(c, id, uid, msgs) {
			return
		}
		c.String(http.StatusBadRequest, "Item id %d cannot be deleted via update, use DELETE", id)
		return
	}

	// 3. --- Conditional Update ---
	updated, err := h.Items.UpdateOwned(c.Request.Context(), id, uid, name)
	if err != nil {
		storageError(c, "update item failed", err)
		return
	}
	if updated == nil {
		if h.checkOwner(c, id, uid, msgs) {
			c.String(http.StatusBadRequest, "%s", msgs.notFound)
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteItem is the handler for DELETE /items/:id
// Items are soft-deleted: the row stays, flagged is_deleted.
func (h *Handlers) DeleteItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseItemID(c, "Item id %s not found, cannot be deleted")
	if !ok {
		return
	}

	deleted, err := h.Items.SoftDeleteOwned(c.Request.Context(), id, uid)
	if err != nil {
		storageError(c, "delete item failed", err)
		return
	}
	if !deleted {
		msgs := missMessages{
			notFound:  fmt.Sprintf("Item id %d not found, cannot be deleted", id),
			forbidden: fmt.Sprintf("Item id %d cannot be deleted by user id %d", id, uid),
		}
		if h.checkOwner(c, id, uid, msgs) {
			c.String(http.StatusBadRequest, "%s", msgs.notFound)
		}
		return
	}

	c.String(http.StatusOK, "Deleted item %d successfully", id)
}

// checkOwner answers 400 when id is not a live item and 403 when uid does
// not own it. It returns true, having written nothing, when uid owns it.
func (h *Handlers) checkOwner(c *gin.Context, id, uid int64, msgs missMessages) bool {
	item, err := h.Items.FindByID(c.Request.Context(), id)
	if err != nil {
		storageError(c, "find item failed", err)
		return false
	}
	if item == nil {
		c.String(http.StatusBadRequest, "%s", msgs.notFound)
		return false
	}
	if !item.OwnedBy(uid) {
		c.String(http.StatusForbidden, "%s", msgs.forbidden)
		return false
	}
	return true
}

// parseItemID reads :id. Anything that is not a positive integer cannot
// name an item and is reported with notFoundFormat.
func parseItemID(c *gin.Context, notFoundFormat string) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, notFoundFormat, raw)
		return 0, false
	}
	return id, true
}
