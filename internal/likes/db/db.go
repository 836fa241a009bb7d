package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-engagement/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// FindLike → the like for an exact (user, event) pair; sql.ErrNoRows when absent
func (d *DB) FindLike(ctx context.Context, userID, eventID string) (*models.Like, error) {
	var like models.Like
	err := d.Bun.NewSelect().
		Model(&like).
		Where("l.user_id = ?", userID).
		Where("l.event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// CreateLike → insert; a second like for the same pair fails on likes_user_event_uq
func (d *DB) CreateLike(ctx context.Context, like *models.Like) error {
	_, err := d.Bun.NewInsert().Model(like).Exec(ctx)
	return err
}

// DeleteLike → hard delete by id, reporting whether a row was removed
func (d *DB) DeleteLike(ctx context.Context, id string) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Like)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetLikesByEvent → likes of an event joined with the liking user, oldest first
func (d *DB) GetLikesByEvent(ctx context.Context, eventID string) ([]models.Like, error) {
	likes := make([]models.Like, 0)
	err := d.Bun.NewSelect().
		Model(&likes).
		Relation("User").
		Where("l.event_id = ?", eventID).
		OrderExpr("l.created_at ASC, l.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return likes, nil
}

func (d *DB) CountByEvent(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Like)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}
