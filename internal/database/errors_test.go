package database_test

import (
	"errors"
	"fmt"
	"ms-engagement/internal/database"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(errors.New("connection refused")))

	assert.True(t, database.IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, database.IsUniqueViolation(fmt.Errorf("insert like: %w", &pq.Error{Code: "23505"})))
	assert.False(t, database.IsUniqueViolation(&pq.Error{Code: "23503"}))

	assert.True(t, database.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: likes.user_id, likes.event_id (2067)")))
}
