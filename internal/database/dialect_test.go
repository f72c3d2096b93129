package database

import (
	"strings"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{MySQL, "UPDATE items SET name = ? WHERE id = ?", "UPDATE items SET name = ? WHERE id = ?"},
		{Postgres, "UPDATE items SET name = ? WHERE id = ?", "UPDATE items SET name = $1 WHERE id = $2"},
		{Postgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		if got := tt.dialect.Rebind(tt.in); got != tt.want {
			t.Errorf("%s.Rebind(%q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	if d, err := DialectFor("mysql"); err != nil || d != MySQL {
		t.Errorf("DialectFor(mysql) = %v, %v", d, err)
	}
	if d, err := DialectFor("postgres"); err != nil || d != Postgres {
		t.Errorf("DialectFor(postgres) = %v, %v", d, err)
	}
	if _, err := DialectFor("sqlite"); err == nil {
		t.Error("DialectFor(sqlite): want error, got nil")
	}
}

func TestMySQLDSNForcesOptions(t *testing.T) {
	dsn, err := mysqlDSN("root:pw@tcp(127.0.0.1:3306)/items")
	if err != nil {
		t.Fatalf("mysqlDSN() error = %v", err)
	}
	for _, want := range []string{"parseTime=true", "clientFoundRows=true"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("mysqlDSN() = %q, missing %q", dsn, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, dir := range []string{"migrations/mysql", "migrations/postgres"} {
		entries, err := migrations.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir(%s) error = %v", dir, err)
		}
		if len(entries) != 2 {
			t.Errorf("%s has %d migrations, want 2", dir, len(entries))
		}
	}
}
