// internal/domain/upload/entity.go
package upload

import "errors"

var (
	ErrNoFile           = errors.New("no file provided")
	ErrFileTooLarge     = errors.New("file size exceeds the limit")
	ErrFileTypeRejected = errors.New("file type not allowed")
	ErrNotAnImage       = errors.New("file content is not an image")
	ErrForeignURL       = errors.New("url does not belong to this store")
)

// File describes a stored image
type File struct {
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	Folder       string `json:"folder"`
	URL          string `json:"url"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}
