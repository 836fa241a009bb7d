package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Like is the sole source of truth for "liked" state; at most one row per (user, event).
type Like struct {
	bun.BaseModel `bun:"table:likes,alias:l"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull,unique:likes_user_event_uq" json:"user_id"`
	EventID   string    `bun:"event_id,notnull,unique:likes_user_event_uq" json:"event_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

type ToggleAction string

const (
	LikeAdded   ToggleAction = "added"
	LikeRemoved ToggleAction = "removed"
)

func (a ToggleAction) Message() string {
	if a == LikeAdded {
		return "Like added"
	}
	return "Like removed"
}
