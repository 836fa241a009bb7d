// Package dbtest opens an in-memory SQLite database with the engagement tables for store
// and service tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-engagement/internal/models"
)

var seq atomic.Int64

// Open returns a fresh database per call. A single connection keeps the shared-cache
// memory database alive and serialises writers.
func Open(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:engagement_%d?mode=memory&cache=shared", seq.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Like)(nil),
		(*models.Comment)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	t.Cleanup(func() { _ = bunDB.Close() })
	return bunDB
}

// SeedUser inserts a user with a throwaway password hash.
func SeedUser(t *testing.T, db *bun.DB, id, fullName, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:         id,
		FullName:   fullName,
		Email:      email,
		Password:   "x",
		ProfilePic: "https://api.dicebear.com/7.x/initials/svg?seed=" + fullName,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(u).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
	return u
}

func SeedEvent(t *testing.T, db *bun.DB, id, ownerID, title string) *models.Event {
	t.Helper()
	e := &models.Event{
		ID:          id,
		UserID:      ownerID,
		Title:       title,
		Description: title + " description",
		Date:        time.Now().Add(7 * 24 * time.Hour).UTC(),
		Location:    "Colombo",
		Tag:         models.TagTech,
		Images:      []string{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(e).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed event %s: %v", id, err)
	}
	return e
}
