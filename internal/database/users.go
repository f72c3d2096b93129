package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/items-api/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned when the unique email constraint fires.
var ErrDuplicateEmail = errors.New("email already registered")

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

// UserStore backs registration and login.
type UserStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserStore(db *sql.DB, dialect Dialect) *UserStore {
	return &UserStore{db: db, dialect: dialect}
}

// Insert creates a user with an already hashed password.
func (s *UserStore) Insert(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	query := "INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)"
	args := []interface{}{user.Email, user.PasswordHash, user.CreatedAt}

	if s.dialect.returning {
		err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&user.ID)
		if err != nil {
			return nil, insertUserError(err)
		}
		return user, nil
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, insertUserError(err)
	}
	if user.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("insert user: last insert id: %w", err)
	}
	return user, nil
}

// FindByEmail returns (nil, nil) when no user has that email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := s.dialect.Rebind("SELECT id, email, password_hash, created_at FROM users WHERE email = ?")

	var user models.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func insertUserError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateEmail
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolate {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("insert user: %w", err)
}
