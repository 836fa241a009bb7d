package db_test

import (
	"context"
	"database/sql"
	"ms-engagement/internal/comments/db"
	"ms-engagement/internal/database/dbtest"
	"ms-engagement/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	bunDB := dbtest.Open(t)
	dbtest.SeedUser(t, bunDB, "u1", "Ada Lovelace", "ada@example.com")
	dbtest.SeedUser(t, bunDB, "u2", "Alan Turing", "alan@example.com")
	dbtest.SeedEvent(t, bunDB, "e1", "u1", "Go meetup")
	return &db.DB{Bun: bunDB}
}

func TestCommentCRUD(t *testing.T) {
	commentDB := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c := &models.Comment{ID: "c1", UserID: "u1", EventID: "e1", Text: "nice event", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, commentDB.CreateComment(ctx, c))

	got, err := commentDB.GetCommentByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "nice event", got.Text)
	assert.Equal(t, "u1", got.UserID)

	later := now.Add(time.Minute)
	require.NoError(t, commentDB.UpdateCommentText(ctx, "c1", "edited", later))

	got, err = commentDB.GetCommentByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.NoError(t, commentDB.DeleteComment(ctx, "c1"))
	_, err = commentDB.GetCommentByID(ctx, "c1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetCommentsByEvent_OrderAndAuthor(t *testing.T) {
	commentDB := setupTestDB(t)
	ctx := context.Background()
	base := time.Now().UTC()

	// Same timestamp for b and a: ties break on id
	require.NoError(t, commentDB.CreateComment(ctx, &models.Comment{ID: "c-b", UserID: "u2", EventID: "e1", Text: "second", CreatedAt: base, UpdatedAt: base}))
	require.NoError(t, commentDB.CreateComment(ctx, &models.Comment{ID: "c-a", UserID: "u1", EventID: "e1", Text: "first", CreatedAt: base, UpdatedAt: base}))
	require.NoError(t, commentDB.CreateComment(ctx, &models.Comment{ID: "c-0", UserID: "u1", EventID: "e1", Text: "latest", CreatedAt: base.Add(time.Second), UpdatedAt: base}))

	comments, err := commentDB.GetCommentsByEvent(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, []string{"c-a", "c-b", "c-0"}, []string{comments[0].ID, comments[1].ID, comments[2].ID})
	require.NotNil(t, comments[1].User)
	assert.Equal(t, "Alan Turing", comments[1].User.FullName)
	assert.Equal(t, "alan@example.com", comments[1].User.Email)

	count, err := commentDB.CountByEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	none, err := commentDB.GetCommentsByEvent(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, none, 0)
}
