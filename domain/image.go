package domain

import (
	"fmt"
	"mime/multipart"
	"net/url"
)

const (
	// OwnerTypePost expresses that an Image belongs to a Post.
	OwnerTypePost = "post"
	// ImagesBaseDir determines the general storage location of uploaded images.
	ImagesBaseDir = "images"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an image to be uploaded. Images are stored as files
// in the filesystem and have no dedicated table in the database. The
// owning record is encoded in the storage path: an image belonging to
// the Post with ID 2 lives at images/post/2/<name>.png.
// File contains the actual image file that will be stored.
type Image struct {
	URL         string         `json:"url"`
	OwnerType   string         `json:"-"`
	OwnerID     int            `json:"-"`
	File        multipart.File `json:"-"`
	Filename    string         `json:"-"`
	Extension   string         `json:"-"`
	ContentType string         `json:"-"`
}

// ImageService is a set of methods to manipulate and work with the
// Image model and respective image files.
type ImageService interface {
	Create(image *Image) error
	ByOwner(ownerType string, ownerID int) ([]Image, error)
	Delete(i *Image) error
	DeleteAll(ownerType string, ownerID int) error
}

// Path returns the url path of an image stored in the filesystem.
func (i *Image) Path() string {
	temp := url.URL{
		Path: "/" + i.RelativePath(),
	}
	return temp.String()
}

// RelativePath returns the relative path to an image stored in the filesystem.
func (i *Image) RelativePath() string {
	return fmt.Sprintf("%v/%v/%v/%v", ImagesBaseDir, i.OwnerType, i.OwnerID, i.Filename)
}
