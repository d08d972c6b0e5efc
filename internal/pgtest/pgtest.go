// internal/pgtest/pgtest.go

// Package pgtest connects tests to a local PostgreSQL, skipping when none is
// reachable.
package pgtest

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Open returns a connection built from the PG* environment variables and
// applies each schema statement.
func Open(t testing.TB, schemas ...string) *sql.DB {
	t.Helper()

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		env("PGHOST", "localhost"), env("PGPORT", "5432"), env("PGUSER", "user"),
		env("PGPASSWORD", "password"), env("PGDATABASE", "testdb"))

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping postgres tests: could not connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return db
}
