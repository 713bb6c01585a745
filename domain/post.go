package domain

import "time"

// Post is a publication by a user, optionally addressed to a Group and
// optionally carrying one image. PubDate is stamped once at creation
// and never changes, and it is the ordering key of every listing:
// newest first, with the ID as tiebreak so that pages stay stable when
// two posts share a timestamp.
type Post struct {
	ID     int    `json:"id"`
	Text   string `json:"text" gorm:"notNull"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"author"`

	// GroupID is a pointer so the column is nullable and can be
	// cleared when the referenced group goes away.
	GroupID *int   `json:"group_id,omitempty" gorm:"index"`
	Group   *Group `json:"group,omitempty"`

	ImageURL string `json:"image_url,omitempty" gorm:"default:null"`

	Comments []Comment `json:"-" gorm:"foreignKey:PostID"`

	PubDate   time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorProfile bundles what the profile page needs to know about an
// author on top of their paginated posts.
type AuthorProfile struct {
	Author    *User `json:"author"`
	PostCount int64 `json:"post_count"`
	// Latest is the author's most recent post, nil if they have none.
	Latest *Post `json:"latest_post,omitempty"`
}

// PostService is a set of methods to manipulate and work with the Post
// model. The By* methods return ENOTFOUND when the slug, username or
// post id does not resolve.
type PostService interface {
	All(page int) (*Page, error)
	ByGroup(slug string, page int) (*Group, *Page, error)
	ByAuthor(username string, page int) (*AuthorProfile, *Page, error)
	Feed(userID int, page int) (*Page, error)
	ByIDAndAuthor(username string, postID int) (*Post, error)
	Create(post *Post) error
	Update(post *Post, editorID int) error
	Delete(post *Post) error
}
