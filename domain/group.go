package domain

import "time"

// Group is a community that posts can optionally be published to.
// Its slug is the unique identifier used in URLs. Deleting a group
// does not delete its posts, their group reference is cleared instead.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" gorm:"notNull"`
	Slug        string `json:"slug" gorm:"uniqueIndex;notNull"`
	Description string `json:"description,omitempty" gorm:"default:null"`

	Posts []Post `json:"-" gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupService is a set of methods to manipulate and work with the Group model.
type GroupService interface {
	BySlug(slug string) (*Group, error)
	All() ([]Group, error)
	Create(group *Group) error
	Delete(group *Group) error
}
