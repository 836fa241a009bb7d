package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TagTech   = "Tech"
	TagHealth = "Health"
	TagOthers = "Others"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          string    `bun:"id,pk" json:"id"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,notnull" json:"description"`
	Date        time.Time `bun:"date,notnull" json:"date"`
	Location    string    `bun:"location,notnull" json:"location"`
	Tag         string    `bun:"tag,notnull,default:'Others'" json:"tag"`
	PhoneNumber string    `bun:"phone_number" json:"phone_number,omitempty"`
	Images      []string  `bun:"images,type:jsonb" json:"images"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// EventDetail is a single event together with its engagement counters.
type EventDetail struct {
	Event
	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`
}
