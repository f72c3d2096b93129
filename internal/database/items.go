package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/items-api/internal/models"
)

// ErrNotFound is returned by writes that require an existing row.
var ErrNotFound = errors.New("item not found")

const itemColumns = "id, name, is_deleted, uid"

// ItemStore issues the parameterized queries behind the /items routes.
// It performs no authorization of its own beyond the uid filters that the
// *Owned methods put into their WHERE clauses.
type ItemStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewItemStore(db *sql.DB, dialect Dialect) *ItemStore {
	return &ItemStore{db: db, dialect: dialect}
}

// Insert stores name, is_deleted and uid and returns the record with its
// database-assigned id.
func (s *ItemStore) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := "INSERT INTO items (name, is_deleted, uid) VALUES (?, ?, ?)"
	args := []interface{}{item.Name, item.IsDeleted, item.UID}

	var id int64
	if s.dialect.returning {
		err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
	} else {
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("insert item: last insert id: %w", err)
		}
	}

	return models.NewItem(id, item.Name, item.IsDeleted, item.UID), nil
}

// ListByOwner returns every live item owned by uid. The slice is never nil.
func (s *ItemStore) ListByOwner(ctx context.Context, uid int64) ([]*models.Item, error) {
	query := s.dialect.Rebind(`
		SELECT ` + itemColumns + `
		FROM items
		WHERE uid = ? AND is_deleted = ?
		ORDER BY id ASC`)

	rows, err := s.db.QueryContext(ctx, query, uid, false)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// FindByID returns the live item with the given id. A missing or
// soft-deleted row yields (nil, nil).
func (s *ItemStore) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	query := s.dialect.Rebind("SELECT " + itemColumns + " FROM items WHERE id = ? AND is_deleted = ?")

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id, false))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item %d: %w", id, err)
	}
	return item, nil
}

// Update overwrites name, is_deleted and uid of row id without looking at
// its current owner. Callers must have checked ownership already.
func (s *ItemStore) Update(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	query := s.dialect.Rebind("UPDATE items SET name = ?, is_deleted = ?, uid = ? WHERE id = ?")

	n, err := s.exec(ctx, query, item.Name, item.IsDeleted, item.UID, id)
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}
	return models.NewItem(id, item.Name, item.IsDeleted, item.UID), nil
}

// SoftDelete flags row id as deleted and reports whether a live row was hit.
func (s *ItemStore) SoftDelete(ctx context.Context, id int64) (bool, error) {
	query := s.dialect.Rebind("UPDATE items SET is_deleted = ? WHERE id = ? AND is_deleted = ?")

	n, err := s.exec(ctx, query, true, id, false)
	if err != nil {
		return false, fmt.Errorf("delete item %d: %w", id, err)
	}
	return n > 0, nil
}

// UpdateOwned renames the live item id only if uid owns it, in one
// statement. (nil, nil) means no row matched all three conditions.
func (s *ItemStore) UpdateOwned(ctx context.Context, id, uid int64, name string) (*models.Item, error) {
	query := s.dialect.Rebind("UPDATE items SET name = ? WHERE id = ? AND uid = ? AND is_deleted = ?")

	n, err := s.exec(ctx, query, name, id, uid, false)
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}
	return models.NewItem(id, name, false, uid), nil
}

// SoftDeleteOwned flags the live item id as deleted only if uid owns it.
func (s *ItemStore) SoftDeleteOwned(ctx context.Context, id, uid int64) (bool, error) {
	query := s.dialect.Rebind("UPDATE items SET is_deleted = ? WHERE id = ? AND uid = ? AND is_deleted = ?")

	n, err := s.exec(ctx, query, true, id, uid, false)
	if err != nil {
		return false, fmt.Errorf("delete item %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *ItemStore) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		id        int64
		name      string
		isDeleted bool
		uid       int64
	)
	if err := row.Scan(&id, &name, &isDeleted, &uid); err != nil {
		return nil, err
	}
	return models.NewItem(id, name, isDeleted, uid), nil
}
