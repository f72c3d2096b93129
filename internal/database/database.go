package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/items-api/internal/config"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool plus the SQL dialect spoken through it.
// Construct one in main and hand it to the stores.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open creates, tunes and pings the connection pool described by cfg.
func Open(ctx context.Context, cfg config.DBConfig, log logrus.FieldLogger) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dialect == MySQL {
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	log.WithField("driver", cfg.Driver).Info("Database connection pool established")
	return &DB{DB: db, Dialect: dialect}, nil
}

// mysqlDSN forces the options the stores depend on: DATETIME columns scan
// into time.Time, and UPDATE reports matched rather than changed rows so an
// unchanged name still counts as a hit.
func mysqlDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	mc.ParseTime = true
	mc.ClientFoundRows = true
	return mc.FormatDSN(), nil
}
