// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"github.com/urnby/campbot/urnby/database"
)

// New returns a fresh schema in a private in-memory SQLite database that is
// closed when the test ends.
func New(t testing.TB) *database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenMemory(context.Background(), name)
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("initialize schema: %v", err)
	}
	return db
}

// Bun is New(t).BunDB().
func Bun(t testing.TB) *bun.DB {
	t.Helper()
	return New(t).BunDB()
}
