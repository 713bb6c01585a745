package domain

import (
	"context"
	"time"
)

// User represents a registered author. Posts, Comments and Follows all
// reference users, and the remember token hash ties a user to their
// session cookie.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;size:30;notNull"`
	Email    string `json:"email" gorm:"uniqueIndex;notNull"`

	// Password is only ever held in memory. What gets persisted is
	// its peppered bcrypt hash.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`

	// Remember is the raw session token living in the client's cookie.
	// Only its HMAC hash is stored.
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"notNull;index"`

	Posts    []Post    `json:"posts,omitempty" gorm:"foreignKey:UserID"`
	Comments []Comment `json:"-" gorm:"foreignKey:UserID"`
	// Followers are edges pointing at this user. Followeds are edges
	// this user created by following other authors.
	Followers []Follow `json:"-" gorm:"foreignKey:FollowedID"`
	Followeds []Follow `json:"-" gorm:"foreignKey:FollowerID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByEmail(email string) (*User, error)
	ByRemember(token string) (*User, error)
	Authenticate(email, password string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
