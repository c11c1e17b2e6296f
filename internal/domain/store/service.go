// internal/domain/store/service.go
package store

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/infrastructure/database/redis"
)

const (
	cacheKey = "store:info"
	cacheTTL = 10 * time.Minute
)

// Cache is the JSON cache in front of the database
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ImageStore saves the logo
type ImageStore interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error)
	Delete(ctx context.Context, url string) error
}

// Service serves the store info through a short-lived cache
type Service struct {
	repo   Repository
	cache  Cache
	images ImageStore
	log    logrus.FieldLogger
}

// NewService creates a new store info service
func NewService(repo Repository, cache Cache, images ImageStore, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, cache: cache, images: images, log: log}
}

// UpdateRequest is the "entity" part of the store info form
type UpdateRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Address      string `json:"address" binding:"max=500"`
	Phone        string `json:"phone" binding:"omitempty,vnphone"`
	Hotline      string `json:"hotline" binding:"max=20"`
	Email        string `json:"email" binding:"omitempty,mailbox"`
	Facebook     string `json:"facebook" binding:"omitempty,url"`
	Zalo         string `json:"zalo" binding:"max=100"`
	OpeningHours string `json:"openingHours" binding:"max=255"`
}

// GetStoreInfo reads through the cache. Cache failures fall back to the database.
func (s *Service) GetStoreInfo(ctx context.Context) (*StoreInfo, error) {
	var info StoreInfo
	err := s.cache.GetJSON(ctx, cacheKey, &info)
	if err == nil {
		return &info, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.WithError(err).Warn("store info cache unavailable")
	}

	fresh, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cacheKey, fresh, cacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache store info")
	}
	return fresh, nil
}

// UpdateStoreInfo saves the info and drops the cached copy
func (s *Service) UpdateStoreInfo(ctx context.Context, req *UpdateRequest, logo *multipart.FileHeader) (*StoreInfo, error) {
	info, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	info.Name = strings.TrimSpace(req.Name)
	info.Address = strings.TrimSpace(req.Address)
	info.Phone = strings.TrimSpace(req.Phone)
	info.Hotline = strings.TrimSpace(req.Hotline)
	info.Email = strings.TrimSpace(req.Email)
	info.Facebook = strings.TrimSpace(req.Facebook)
	info.Zalo = strings.TrimSpace(req.Zalo)
	info.OpeningHours = strings.TrimSpace(req.OpeningHours)

	old := ""
	if logo != nil {
		f, err := s.images.Save(ctx, "store", logo)
		if err != nil {
			return nil, err
		}
		old, info.Logo = info.Logo, f.URL
	}
	if err := s.repo.Save(ctx, info); err != nil {
		return nil, err
	}

	if err := s.cache.Del(ctx, cacheKey); err != nil {
		s.log.WithError(err).Warn("failed to invalidate store info cache")
	}
	if old != "" {
		if err := s.images.Delete(ctx, old); err != nil {
			s.log.WithError(err).WithField("url", old).Warn("failed to remove old logo")
		}
	}
	s.log.Info("store info updated")
	return info, nil
}
