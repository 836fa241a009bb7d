package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         string    `bun:"id,pk" json:"id"`
	FullName   string    `bun:"full_name,notnull" json:"full_name"`
	Email      string    `bun:"email,unique,notnull" json:"email,omitempty"`
	Password   string    `bun:"password,notnull" json:"-"`
	ProfilePic string    `bun:"profile_pic" json:"profile_pic,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// PublicUser is the account shape returned by the auth endpoints.
type PublicUser struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
	}
}
