package models

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,notblank,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by login; the token is also set as the session cookie.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *PublicUser `json:"user"`
}

// CreateEventRequest accepts dates as RFC3339 or YYYY-MM-DD.
type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Description string   `json:"description" validate:"required,notblank"`
	Date        string   `json:"date" validate:"required"`
	Location    string   `json:"location" validate:"required,notblank"`
	Tag         string   `json:"tag" validate:"omitempty,oneof=Tech Health Others"`
	PhoneNumber string   `json:"phone_number" validate:"omitempty,max=32"`
	Images      []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// UpdateEventRequest is a partial update; nil fields are left untouched.
type UpdateEventRequest struct {
	Title       *string   `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string   `json:"description" validate:"omitempty,notblank"`
	Date        *string   `json:"date"`
	Location    *string   `json:"location" validate:"omitempty,notblank"`
	Tag         *string   `json:"tag" validate:"omitempty,oneof=Tech Health Others"`
	PhoneNumber *string   `json:"phone_number" validate:"omitempty,max=32"`
	Images      *[]string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// CommentRequest carries comment text. Blank text is rejected by the comment service,
// so the handler only decodes it. Older clients send the text as commentText.
type CommentRequest struct {
	Text        string `json:"text"`
	CommentText string `json:"commentText"`
}

func (r CommentRequest) Body() string {
	if r.Text != "" {
		return r.Text
	}
	return r.CommentText
}
