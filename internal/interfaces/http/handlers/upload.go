// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

var folderPattern = regexp.MustCompile(`^[a-z0-9-]{1,40}$`)

// UploadService stores images for the back office editor
type UploadService interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error)
	SaveAll(ctx context.Context, folder string, headers []*multipart.FileHeader) ([]upload.File, error)
	Delete(ctx context.Context, url string) error
}

// UploadHandler handles file upload endpoints
type UploadHandler struct {
	uploads UploadService
	log     logrus.FieldLogger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads UploadService, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{uploads: uploads, log: log}
}

// DeleteImageRequest names a stored image by its public URL
type DeleteImageRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// UploadImage handles POST /admin/uploads/image?folder=
func (h *UploadHandler) UploadImage(c *gin.Context) {
	folder, ok := uploadFolder(c)
	if !ok {
		return
	}
	f, err := h.uploads.Save(c.Request.Context(), folder, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, f, "Image uploaded successfully")
}

// UploadImages handles POST /admin/uploads/images?folder=
func (h *UploadHandler) UploadImages(c *gin.Context) {
	folder, ok := uploadFolder(c)
	if !ok {
		return
	}
	files, err := h.uploads.SaveAll(c.Request.Context(), folder, formFiles(c, "images"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, files, "Images uploaded successfully")
}

// DeleteImage handles DELETE /admin/uploads
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var req DeleteImageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.uploads.Delete(c.Request.Context(), req.URL); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Image deleted successfully")
}

func uploadFolder(c *gin.Context) (string, bool) {
	folder := c.DefaultQuery("folder", "editor")
	if !folderPattern.MatchString(folder) {
		response.Error(c, http.StatusBadRequest, "Invalid folder", "folder may contain lowercase letters, digits and dashes")
		return "", false
	}
	return folder, true
}
