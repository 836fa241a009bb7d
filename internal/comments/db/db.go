package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-engagement/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetCommentByID → one comment by id; sql.ErrNoRows when absent
func (d *DB) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := d.Bun.NewSelect().
		Model(&comment).
		Where("c.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (d *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := d.Bun.NewInsert().Model(comment).Exec(ctx)
	return err
}

// UpdateCommentText → replace text and bump updated_at
func (d *DB) UpdateCommentText(ctx context.Context, id, text string, at time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Comment)(nil)).
		Set("text = ?", text).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteComment → hard delete by id
func (d *DB) DeleteComment(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Comment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// GetCommentsByEvent → comments of an event with their authors, oldest first
func (d *DB) GetCommentsByEvent(ctx context.Context, eventID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := d.Bun.NewSelect().
		Model(&comments).
		Relation("User").
		Where("c.event_id = ?", eventID).
		OrderExpr("c.created_at ASC, c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (d *DB) CountByEvent(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Comment)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}
