package domain

type (
	UserId    = int64
	PostId    = int64
	CommentId = int64

	Username = string
	Email    = string
	Password = string
)

// Search scopes accepted by post search.
const (
	SearchByTitle   = "title"
	SearchByContent = "content"
	SearchByAuthor  = "author"
)
