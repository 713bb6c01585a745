package crud

import (
	"errors"

	"gorm.io/gorm"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// FollowService manages Follow edges between users.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Create follows an author on behalf of a user. Following yourself and
// following an author twice are silent no-ops: the surrounding UI never
// offers either, so they are swallowed instead of raised, and a second
// Create never grows the edge count.
func (fv *followValidator) Create(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return nil
	}
	if err := runFollowValFns(follow, fv.followedUserExists); err != nil {
		return err
	}
	exists, err := fv.followGorm.IsFollowing(follow.FollowerID, follow.FollowedID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return fv.followGorm.Create(follow)
}

// Delete unfollows an author. Unfollowing someone you don't follow is
// a silent no-op.
func (fv *followValidator) Delete(follow *domain.Follow) error {
	if err := runFollowValFns(follow, fv.followedUserExists); err != nil {
		return err
	}
	return fv.followGorm.Delete(follow)
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ?", follow.FollowedID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// IsFollowing reports whether an edge from user to author exists.
func (fg *followGorm) IsFollowing(userID, authorID int) (bool, error) {
	var count int64
	err := fg.db.Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountFollowers returns the number of users following the given author.
func (fg *followGorm) CountFollowers(authorID int) (int64, error) {
	var count int64
	err := fg.db.Model(&domain.Follow{}).
		Where("followed_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// CountFollowing returns the number of authors the given user follows.
func (fg *followGorm) CountFollowing(userID int) (int64, error) {
	var count int64
	err := fg.db.Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Create inserts the edge. Two concurrent follows of the same pair race
// on the composite unique index; the loser's duplicate key violation
// means the desired state already holds, so it's treated as a no-op.
func (fg *followGorm) Create(follow *domain.Follow) error {
	err := fg.db.Create(follow).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// Delete removes the edge if present.
func (fg *followGorm) Delete(follow *domain.Follow) error {
	return fg.db.
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Delete(&domain.Follow{}).Error
}
