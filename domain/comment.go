package domain

import "time"

// Comment belongs to exactly one Post and one User. Comments are read
// in thread order, oldest first. When the parent post is deleted its
// comments go with it.
type Comment struct {
	ID     int    `json:"id"`
	Text   string `json:"text" gorm:"notNull"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"author"`
	PostID int    `json:"post_id" gorm:"notNull;index"`

	Created time.Time `json:"created" gorm:"autoCreateTime"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByPost(postID int) ([]Comment, error)
	Create(comment *Comment) error
}
