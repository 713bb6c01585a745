package crud

import (
	"regexp"
	"strings"

	"gorm.io/gorm"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// GroupService manages Groups.
// It implements the domain.GroupService interface.
type GroupService struct {
	groupValidator
}

// groupValidator runs validations on incoming Group data.
// On success, it passes the data on to groupGorm.
// Otherwise, it returns the error of the validation that has failed.
type groupValidator struct {
	slugRegex *regexp.Regexp
	groupGorm
}

// groupGorm runs CRUD operations on the database using incoming Group data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type groupGorm struct {
	db *gorm.DB
}

// NewGroupService returns an instance of GroupService.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{
		groupValidator{
			slugRegex: regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`),
			groupGorm: groupGorm{
				db: db,
			},
		},
	}
}

// Ensure the GroupService struct properly implements the domain.GroupService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.GroupService = &GroupService{}

// Create runs validations needed for creating new Group database records.
func (gv *groupValidator) Create(group *domain.Group) error {
	err := runGroupValFns(group,
		gv.titleRequired,
		gv.slugNormalize,
		gv.slugRequired,
		gv.slugFormat,
		gv.slugIsAvail)
	if err != nil {
		return err
	}
	return gv.groupGorm.Create(group)
}

// Delete runs validations needed for deleting existing Group database records.
func (gv *groupValidator) Delete(group *domain.Group) error {
	if group.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Group ID is invalid.")
	}
	return gv.groupGorm.Delete(group)
}

// A groupValFn is any function that takes in a pointer to a domain.Group object and returns an error.
type groupValFn func(group *domain.Group) error

// runGroupValFns runs any number of functions of type groupValFn on the passed in Group object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runGroupValFns(group *domain.Group, fns ...groupValFn) error {
	for _, fn := range fns {
		if err := fn(group); err != nil {
			return err
		}
	}
	return nil
}

func (gv *groupValidator) titleRequired(group *domain.Group) error {
	if strings.TrimSpace(group.Title) == "" {
		return errs.Errorf(errs.EINVALID, "A group title is required.")
	}
	return nil
}

func (gv *groupValidator) slugNormalize(group *domain.Group) error {
	group.Slug = strings.ToLower(strings.TrimSpace(group.Slug))
	return nil
}

func (gv *groupValidator) slugRequired(group *domain.Group) error {
	if group.Slug == "" {
		return errs.Errorf(errs.EINVALID, "A group slug is required.")
	}
	return nil
}

func (gv *groupValidator) slugFormat(group *domain.Group) error {
	if !gv.slugRegex.MatchString(group.Slug) {
		return errs.Errorf(errs.EINVALID, "Group slug may only contain a-z, 0-9 and dashes.")
	}
	return nil
}

func (gv *groupValidator) slugIsAvail(group *domain.Group) error {
	existing, err := gv.groupGorm.BySlug(group.Slug)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil
	}
	if err != nil {
		return err
	}
	if group.ID != existing.ID {
		return errs.Errorf(errs.ECONFLICT, "A group with this slug already exists.")
	}
	return nil
}

// BySlug retrieves a Group database record by its unique slug.
// If the record doesn't exist, it returns ENOTFOUND.
func (gg *groupGorm) BySlug(slug string) (*domain.Group, error) {
	var group domain.Group
	err := gg.db.First(&group, "slug = ?", slug).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return nil, err
	}
	return &group, nil
}

// All retrieves every Group, ordered by title. The new-post form uses
// this to offer the list of groups a post can be published to.
func (gg *groupGorm) All() ([]domain.Group, error) {
	var groups []domain.Group
	err := gg.db.Order("title ASC").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Create stores the data from the Group object in a new database record.
func (gg *groupGorm) Create(group *domain.Group) error {
	return gg.db.Create(group).Error
}

// Delete removes a group. Posts published to it survive, their group
// reference is cleared instead.
func (gg *groupGorm) Delete(group *domain.Group) error {
	err := gg.db.Model(&domain.Post{}).
		Where("group_id = ?", group.ID).
		Update("group_id", nil).Error
	if err != nil {
		return err
	}
	return gg.db.Delete(&domain.Group{}, "id = ?", group.ID).Error
}
