package domain

import "time"

const MaxCommentLen = 1000

type Comment struct {
	Id        CommentId `json:"id"`
	PostId    PostId    `json:"post_id"`
	AuthorId  UserId    `json:"author_id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
