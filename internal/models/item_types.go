package models

import "strings"

// Item is the model for the 'items' table.
type Item struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	IsDeleted bool   `json:"is_deleted" db:"is_deleted"`
	UID       int64  `json:"uid" db:"uid"`
}

// NewItem builds the canonical Item from request or row data.
// Surrounding whitespace is not part of a name.
func NewItem(id int64, name string, isDeleted bool, uid int64) *Item {
	return &Item{
		ID:        id,
		Name:      strings.TrimSpace(name),
		IsDeleted: isDeleted,
		UID:       uid,
	}
}

// OwnedBy reports whether uid is the item's owner.
func (i *Item) OwnedBy(uid int64) bool {
	return i != nil && i.UID == uid
}
