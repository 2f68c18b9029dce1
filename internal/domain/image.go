package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Allowed content types for image uploads.
var AllowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/webp":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

// IsAllowedImageType reports whether contentType, ignoring parameters such
// as charset, is an accepted image type.
func IsAllowedImageType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return AllowedImageTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

// Image is a binary image owned by a product. Data is only populated by
// lookups that serve the payload.
type Image struct {
	ID        int64
	FileName  string
	FileType  string
	Size      int64
	Data      []byte
	ProductID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ETag identifies this version of the image payload. It changes whenever
// the file is replaced.
func (i *Image) ETag() string {
	return fmt.Sprintf(`"%d-%d"`, i.ID, i.UpdatedAt.UnixNano())
}

// ImageDTO is the API representation of an image.
type ImageDTO struct {
	ID          int64  `json:"id"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	DownloadURL string `json:"download_url"`
}

// ToDTO maps img to an ImageDTO whose download URL is baseURL followed by
// the image id.
func (img *Image) ToDTO(baseURL string) ImageDTO {
	return ImageDTO{
		ID:          img.ID,
		FileName:    img.FileName,
		FileType:    img.FileType,
		DownloadURL: baseURL + strconv.FormatInt(img.ID, 10),
	}
}

// UploadedFile is one file from a multipart upload.
type UploadedFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
