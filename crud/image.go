package crud

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// ImageService manages Images.
// It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageCrud.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageCrud
}

// imageCrud runs CRUD operations on the filesystem using incoming Image data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type imageCrud struct {
	baseDir string
}

// NewImageService returns an instance of ImageService storing files
// under the given base directory.
func NewImageService(baseDir string) *ImageService {
	return &ImageService{
		imageValidator{
			imageCrud{
				baseDir: baseDir,
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageService = &ImageService{}

// Create runs validations needed for storing uploaded images in the filesystem.
func (iv *imageValidator) Create(img *domain.Image) error {
	err := runImageValFns(img,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.decodesAsImage,
		iv.belowMaxSize,
		iv.fileNameUnique,
	)
	if err != nil {
		return err
	}
	return iv.imageCrud.Create(img)
}

// A imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".gif" {
		return errs.Errorf(errs.EINVALID,
			"Image %s has an invalid extension, must be .jpeg, .png or .gif.", img.Filename)
	}
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	img.Extension = ext
	return nil
}

func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	_, err := img.File.Read(buffer)
	if err != nil && err != io.EOF {
		return err
	}
	if err = resetReaderPosition(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer)
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/gif" {
		return errs.Errorf(errs.EINVALID,
			"Image %s has an invalid content-type, must be image/jpeg, image/png or image/gif.", img.Filename)
	}
	img.ContentType = contentType
	return nil
}

// decodesAsImage makes sure the payload really is a decodable image
// and not just a file wearing the right header bytes.
func (iv *imageValidator) decodesAsImage(img *domain.Image) error {
	_, _, err := image.DecodeConfig(img.File)
	if err != nil {
		return errs.Errorf(errs.EINVALID, "Image %s could not be decoded.", img.Filename)
	}
	return resetReaderPosition(img)
}

func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetReaderPosition(img); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(errs.EINVALID,
			"Image %s exceeds the upload size limit of %dMB.", img.Filename, domain.MaxUploadSize>>20)
	}
	return nil
}

// fileNameUnique renames the image to a random unique name, keeping
// the validated extension.
func (iv *imageValidator) fileNameUnique(img *domain.Image) error {
	img.Filename = uuid.NewString() + img.Extension
	return nil
}

// resetReaderPosition seeks back to the beginning of the file, so that
// subsequent reads will work.
func resetReaderPosition(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// Create writes the image file into the owner's directory.
func (ic *imageCrud) Create(img *domain.Image) error {
	path, err := ic.mkImagePath(img.OwnerType, img.OwnerID)
	if err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(path, img.Filename))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err = io.Copy(dst, img.File); err != nil {
		return err
	}
	img.URL = "/" + ic.imagePath(img.OwnerType, img.OwnerID) + img.Filename
	return nil
}

// ByOwner lists the stored images of one owning record.
func (ic *imageCrud) ByOwner(ownerType string, ownerID int) ([]domain.Image, error) {
	path := ic.imagePath(ownerType, ownerID)
	files, err := filepath.Glob(path + "*")
	if err != nil {
		return nil, err
	}
	ret := make([]domain.Image, len(files))
	for i, f := range files {
		ret[i] = domain.Image{
			OwnerType: ownerType,
			OwnerID:   ownerID,
			Filename:  filepath.Base(f),
			URL:       "/" + f,
		}
	}
	return ret, nil
}

// Delete removes one stored image file.
func (ic *imageCrud) Delete(i *domain.Image) error {
	return os.Remove(filepath.Join(ic.imagePath(i.OwnerType, i.OwnerID), i.Filename))
}

// DeleteAll removes every stored image of one owning record.
func (ic *imageCrud) DeleteAll(ownerType string, ownerID int) error {
	return os.RemoveAll(ic.imagePath(ownerType, ownerID))
}

func (ic *imageCrud) mkImagePath(ownerType string, ownerID int) (string, error) {
	imagePath := ic.imagePath(ownerType, ownerID)
	if err := os.MkdirAll(imagePath, 0755); err != nil {
		return "", err
	}
	return imagePath, nil
}

func (ic *imageCrud) imagePath(ownerType string, ownerID int) string {
	return fmt.Sprintf("%v/%v/%v/", ic.baseDir, ownerType, ownerID)
}
