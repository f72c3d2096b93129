package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/01moynul/items-api/internal/config"
)

// Dialect captures the few places where MySQL and Postgres disagree.
type Dialect struct {
	name   string
	driver string // database/sql driver name
	goose  string // goose dialect name
	dollar bool   // $1 placeholders instead of ?
	// returning means INSERT ... RETURNING id is used instead of LastInsertId.
	returning bool
}

var (
	MySQL    = Dialect{name: config.DriverMySQL, driver: "mysql", goose: "mysql"}
	Postgres = Dialect{name: config.DriverPostgres, driver: "pgx", goose: "postgres", dollar: true, returning: true}
)

// DialectFor maps a DB_DRIVER value to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return MySQL, nil
	case config.DriverPostgres:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) String() string { return d.name }

// Rebind rewrites ? placeholders for dialects that number them.
// Queries in this package never carry a literal '?'.
func (d Dialect) Rebind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
