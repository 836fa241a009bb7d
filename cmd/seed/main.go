// Command seed loads demo users, events, likes and comments into an empty database.
// Run cmd/migrate up first.
package main

import (
	"context"
	"database/sql"
	"log"
	"ms-engagement/internal/auth"
	"ms-engagement/internal/config"
	"ms-engagement/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const demoPassword = "password123"

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg := config.Load()

	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return seedData(ctx, tx)
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Done.")
}

func seedData(ctx context.Context, tx bun.Tx) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	log.Println("Seeding users...")
	users := []models.User{
		{ID: uuid.NewString(), FullName: "Alice Wonderland", Email: "alice@example.com"},
		{ID: uuid.NewString(), FullName: "Bob Builder", Email: "bob@example.com"},
	}
	for i := range users {
		users[i].Password = hash
		users[i].ProfilePic = "https://api.dicebear.com/7.x/initials/svg?seed=" + users[i].FullName
		users[i].CreatedAt = now
		users[i].UpdatedAt = now
	}
	if _, err := tx.NewInsert().Model(&users).Exec(ctx); err != nil {
		return err
	}

	log.Println("Seeding events...")
	events := []models.Event{
		{
			ID:          uuid.NewString(),
			UserID:      users[0].ID,
			Title:       "Summer Tech Meetup",
			Description: "Lightning talks on distributed systems.",
			Date:        now.AddDate(0, 1, 0),
			Location:    "Colombo",
			Tag:         models.TagTech,
			Images:      []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			UserID:      users[1].ID,
			Title:       "Community Health Walk",
			Description: "A 5k walk around the lake.",
			Date:        now.AddDate(0, 0, 14),
			Location:    "Kandy",
			Tag:         models.TagHealth,
			Images:      []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	if _, err := tx.NewInsert().Model(&events).Exec(ctx); err != nil {
		return err
	}

	log.Println("Seeding likes and comments...")
	likes := []models.Like{
		{ID: uuid.NewString(), UserID: users[1].ID, EventID: events[0].ID, CreatedAt: now},
		{ID: uuid.NewString(), UserID: users[0].ID, EventID: events[1].ID, CreatedAt: now},
	}
	if _, err := tx.NewInsert().Model(&likes).Exec(ctx); err != nil {
		return err
	}

	comments := []models.Comment{
		{ID: uuid.NewString(), UserID: users[1].ID, EventID: events[0].ID, Text: "Count me in!", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), UserID: users[0].ID, EventID: events[0].ID, Text: "Slides will be shared afterwards.", CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)},
	}
	_, err = tx.NewInsert().Model(&comments).Exec(ctx)
	return err
}
