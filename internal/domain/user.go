package domain

import "time"

type User struct {
	Id        UserId    `json:"id"`
	Username  Username  `json:"username"`
	Email     Email     `json:"email"`
	Nickname  string    `json:"nickname,omitempty"`
	PassHash  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// to iterate thru layers: handler -> service -> storage
type UserCreationData struct {
	Username Username
	Email    Email
	PassHash string
}

type ProfileUpdateData struct {
	Nickname *string
	PassHash *string
}
