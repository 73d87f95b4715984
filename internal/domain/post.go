package domain

import "time"

type Post struct {
	Id        PostId    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorId  UserId    `json:"author_id"`
	Author    User      `json:"author"`
	ViewCount int64     `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// to iterate thru layers: handler -> service -> storage
type PostCreationData struct {
	Title   string
	Content string
}

// Nil field means "leave unchanged".
type PostUpdateData struct {
	Title   *string
	Content *string
}

// PostFilter narrows listings to a case-insensitive substring match.
// A blank Query means "no filter".
type PostFilter struct {
	Query string
	Type  string // SearchByTitle, SearchByContent or SearchByAuthor
}
