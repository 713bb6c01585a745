package crud

import (
	"strings"

	"gorm.io/gorm"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// postOrder is the ordering key of every post listing: newest first.
// The ID tiebreak keeps page boundaries deterministic when two posts
// share a pub_date, so two reads without intervening writes always
// return identical pages. The columns are table-qualified because the
// feed query joins follows, which has id and created_at columns of
// its own.
const postOrder = "posts.pub_date DESC, posts.id DESC"

// PostService manages Posts. It covers both the submission side
// (create, edit, delete) and the query side feeding the listing pages.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(post *domain.Post) error {
	err := runPostValFns(post,
		pv.userIDValid,
		pv.textNotEmpty,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(post)
}

// Update edits an existing post on behalf of the given editor. Only the
// post's author may edit it, anyone else gets EUNAUTHORIZED and the
// record stays untouched. Text, group and image are mutable, the
// publication date is not.
func (pv *postValidator) Update(post *domain.Post, editorID int) error {
	existing, err := pv.postGorm.byID(post.ID)
	if err != nil {
		return err
	}
	if existing.UserID != editorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post.")
	}
	post.UserID = existing.UserID
	post.PubDate = existing.PubDate
	err = runPostValFns(post,
		pv.textNotEmpty,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(post)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post ID is invalid.")
	}
	return pv.postGorm.Delete(post)
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

func (pv *postValidator) userIDValid(post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post author is required.")
	}
	return nil
}

func (pv *postValidator) textNotEmpty(post *domain.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return nil
}

// groupExists makes sure the referenced group actually exists.
// This check only runs when the incoming Post targets a group.
func (pv *postValidator) groupExists(post *domain.Post) error {
	if post.GroupID == nil {
		return nil
	}
	err := pv.db.First(&domain.Group{}, "id = ?", *post.GroupID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.EINVALID, "The selected group does not exist.")
		}
		return err
	}
	return nil
}

// All retrieves one page of all posts, newest first.
func (pg *postGorm) All(page int) (*domain.Page, error) {
	return pg.paginate(pg.db.Model(&domain.Post{}), page)
}

// ByGroup retrieves the group with the given slug and one page of the
// posts published to it, newest first. An unknown slug is ENOTFOUND.
func (pg *postGorm) ByGroup(slug string, page int) (*domain.Group, *domain.Page, error) {
	var group domain.Group
	err := pg.db.First(&group, "slug = ?", slug).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return nil, nil, err
	}
	result, err := pg.paginate(pg.db.Model(&domain.Post{}).Where("group_id = ?", group.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return &group, result, nil
}

// ByAuthor retrieves the profile of the author with the given username
// and one page of their posts, newest first. The profile carries the
// author's total post count and their most recent post, if any.
// An unknown username is ENOTFOUND.
func (pg *postGorm) ByAuthor(username string, page int) (*domain.AuthorProfile, *domain.Page, error) {
	var author domain.User
	err := pg.db.First(&author, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, nil, err
	}
	result, err := pg.paginate(pg.db.Model(&domain.Post{}).Where("user_id = ?", author.ID), page)
	if err != nil {
		return nil, nil, err
	}
	profile := &domain.AuthorProfile{
		Author:    &author,
		PostCount: result.TotalItems,
	}
	var latest domain.Post
	err = pg.db.Where("user_id = ?", author.ID).Order(postOrder).First(&latest).Error
	if err == nil {
		profile.Latest = &latest
	} else if err != gorm.ErrRecordNotFound {
		return nil, nil, err
	}
	return profile, result, nil
}

// Feed retrieves one page of posts authored by anyone the given user
// follows, newest first. It's a single join over the follows table, so
// a user following many authors still costs one query pair. Following
// no one yields an empty page, not an error.
func (pg *postGorm) Feed(userID int, page int) (*domain.Page, error) {
	query := pg.db.Model(&domain.Post{}).
		Joins("JOIN follows ON follows.followed_id = posts.user_id").
		Where("follows.follower_id = ?", userID)
	return pg.paginate(query, page)
}

// ByIDAndAuthor retrieves a single Post by ID, but only if it belongs
// to the author with the given username. Everything else is ENOTFOUND.
func (pg *postGorm) ByIDAndAuthor(username string, postID int) (*domain.Post, error) {
	var author domain.User
	err := pg.db.First(&author, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	var post domain.Post
	err = pg.db.
		Preload("User").
		Preload("Group").
		First(&post, "id = ? AND user_id = ?", postID, author.ID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	return &post, nil
}

// byID retrieves a single Post by ID, without associations.
func (pg *postGorm) byID(id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	return &post, nil
}

// Create stores the data from the Post object in a new database record.
// The publication date is stamped on insert.
func (pg *postGorm) Create(post *domain.Post) error {
	return pg.db.Create(post).Error
}

// Update saves the mutable fields of an edited post. The map form is
// needed so clearing the group reference writes an actual NULL.
func (pg *postGorm) Update(post *domain.Post) error {
	err := pg.db.Model(&domain.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":      post.Text,
			"group_id":  post.GroupID,
			"image_url": post.ImageURL,
		}).Error
	if err != nil {
		return err
	}
	return pg.db.First(post, "id = ?", post.ID).Error
}

// Delete removes a post together with its comments.
func (pg *postGorm) Delete(post *domain.Post) error {
	err := pg.db.Delete(&domain.Comment{}, "post_id = ?", post.ID).Error
	if err != nil {
		return err
	}
	return pg.db.Delete(&domain.Post{}, "id = ?", post.ID).Error
}

// paginate slices the given post query into the requested page. The
// page number is clamped into the valid range, so an out-of-range
// request lands on the first or last page rather than erroring.
func (pg *postGorm) paginate(query *gorm.DB, number int) (*domain.Page, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	page := domain.NewPage(number, total)
	var posts []domain.Post
	err := query.Session(&gorm.Session{}).
		Preload("User").
		Preload("Group").
		Order(postOrder).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	page.Items = posts
	return page, nil
}
