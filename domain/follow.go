package domain

import "time"

// Follow represents a self-referential many-to-many relationship
// between two users. A Follow is created when one user decides to
// follow an author. The FollowerID is the ID of the user that follows,
// the FollowedID is the ID of the author being followed. The composite
// unique index guarantees a pair can only ever hold one edge.
type Follow struct {
	ID         int  `json:"id"`
	FollowerID int  `json:"-" gorm:"notNull;uniqueIndex:idx_follower_followed;index"`
	Follower   User `json:"follower"`
	FollowedID int  `json:"-" gorm:"notNull;uniqueIndex:idx_follower_followed;index"`
	Followed   User `json:"followed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FollowService is a set of methods to manipulate and work with the
// Follow model. Create and Delete are idempotent: following an already
// followed author, following yourself, or unfollowing an author you
// don't follow all leave state unchanged without an error.
type FollowService interface {
	Create(follow *Follow) error
	Delete(follow *Follow) error
	IsFollowing(userID, authorID int) (bool, error)
	CountFollowers(authorID int) (int64, error)
	CountFollowing(userID int) (int64, error)
}
