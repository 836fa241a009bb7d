package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	comment_db "ms-engagement/internal/comments/db"
	like_db "ms-engagement/internal/likes/db"
	"ms-engagement/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// GetEventByID → one event; sql.ErrNoRows when absent
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) EventExists(ctx context.Context, id string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

// ListEvents → all events, newest first
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := d.Bun.NewSelect().
		Model(&events).
		OrderExpr("e.created_at DESC, e.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsByUser → events owned by userID, newest first
func (d *DB) ListEventsByUser(ctx context.Context, userID string) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := d.Bun.NewSelect().
		Model(&events).
		Where("e.user_id = ?", userID).
		OrderExpr("e.created_at DESC, e.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent → write the editable columns
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "description", "date", "location", "tag", "phone_number", "images", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// DeleteEventCascade → remove the event with its likes and comments in one transaction
func (d *DB) DeleteEventCascade(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Like)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Comment)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Event)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// CountEngagement → like and comment totals of one event, counted by the like and comment stores
func (d *DB) CountEngagement(ctx context.Context, id string) (likes int, comments int, err error) {
	likes, err = (&like_db.DB{Bun: d.Bun}).CountByEvent(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	comments, err = (&comment_db.DB{Bun: d.Bun}).CountByEvent(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	return likes, comments, nil
}
