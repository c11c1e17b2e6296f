// internal/domain/upload/service.go
package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
)

// Service stores uploaded images on local disk and serves them under a public base URL
type Service struct {
	root    string
	baseURL string
	maxSize int64
	allowed map[string]bool
	log     logrus.FieldLogger
}

// NewService creates a new upload service
func NewService(cfg config.UploadConfig, log logrus.FieldLogger) *Service {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return &Service{
		root:    cfg.LocalPath,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxSize: cfg.MaxSize,
		allowed: allowed,
		log:     log,
	}
}

// Save validates and writes one image into folder
func (s *Service) Save(ctx context.Context, folder string, fh *multipart.FileHeader) (*File, error) {
	if fh == nil {
		return nil, ErrNoFile
	}
	if err := s.validate(fh); err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	// sniff the first 512 bytes, then stream the rest
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	mimeType := http.DetectContentType(head)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%s: %w", fh.Filename, ErrNotAnImage)
	}

	folder = cleanFolder(folder)
	filename := s.generateUniqueFilename(fh.Filename)
	fullPath := filepath.Join(s.root, folder, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	f := &File{
		OriginalName: fh.Filename,
		Filename:     filename,
		Folder:       folder,
		URL:          s.urlFor(folder, filename),
		MimeType:     mimeType,
		Size:         size,
	}
	f.Width, f.Height = imageDimensions(fullPath)

	s.log.WithFields(logrus.Fields{"folder": folder, "file": filename, "size": size}).Debug("image stored")
	return f, nil
}

// SaveAll stores every file or none of them
func (s *Service) SaveAll(ctx context.Context, folder string, headers []*multipart.FileHeader) ([]File, error) {
	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		f, err := s.Save(ctx, folder, fh)
		if err != nil {
			for _, done := range files {
				s.Delete(ctx, done.URL)
			}
			return nil, err
		}
		files = append(files, *f)
	}
	return files, nil
}

// Delete removes a previously stored image by its public URL. Missing files are ignored.
func (s *Service) Delete(_ context.Context, url string) error {
	if url == "" {
		return nil
	}
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || strings.Contains(rel, "..") {
		return ErrForeignURL
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Root is the directory served under the public base URL
func (s *Service) Root() string {
	return s.root
}

func (s *Service) validate(fh *multipart.FileHeader) error {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if len(s.allowed) > 0 && !s.allowed[ext] {
		return ErrFileTypeRejected
	}
	return nil
}

func (s *Service) generateUniqueFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.NewString() + ext
}

func (s *Service) urlFor(folder, filename string) string {
	return s.baseURL + "/" + path.Join(folder, filename)
}

func cleanFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" || folder == "." {
		return "general"
	}
	return folder
}

func imageDimensions(fullPath string) (int, int) {
	f, err := os.Open(fullPath)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
