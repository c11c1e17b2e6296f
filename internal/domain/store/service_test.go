package store

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

type memoryRepo struct {
	info  StoreInfo
	reads int
}

func (r *memoryRepo) Get(_ context.Context) (*StoreInfo, error) {
	r.reads++
	cp := r.info
	return &cp, nil
}

func (r *memoryRepo) Save(_ context.Context, info *StoreInfo) error {
	info.ID = singletonID
	r.info = *info
	return nil
}

type fakeImages struct{ deleted []string }

func (f *fakeImages) Save(_ context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error) {
	return &upload.File{URL: "/uploads/" + folder + "/" + fh.Filename}, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func newService(t *testing.T) (*Service, *memoryRepo, *miniredis.Miniredis, *fakeImages) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &memoryRepo{info: StoreInfo{ID: singletonID, Name: "Cửa hàng"}}
	images := &fakeImages{}
	return NewService(repo, redis.NewClient(rdb), images, logger.Discard()), repo, mr, images
}

func TestGetStoreInfo_Cached(t *testing.T) {
	svc, repo, mr, _ := newService(t)
	ctx := context.Background()

	info, err := svc.GetStoreInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cửa hàng", info.Name)

	_, err = svc.GetStoreInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads)

	mr.FastForward(11 * time.Minute)
	_, err = svc.GetStoreInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
}

func TestUpdateStoreInfo_Invalidates(t *testing.T) {
	svc, _, mr, images := newService(t)
	ctx := context.Background()

	_, err := svc.GetStoreInfo(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cacheKey))

	_, err = svc.UpdateStoreInfo(ctx, &UpdateRequest{Name: "Shop Mới", Phone: "0912345678"}, &multipart.FileHeader{Filename: "logo.png"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey))

	info, err := svc.GetStoreInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shop Mới", info.Name)
	assert.Equal(t, "/uploads/store/logo.png", info.Logo)

	_, err = svc.UpdateStoreInfo(ctx, &UpdateRequest{Name: "Shop Mới"}, &multipart.FileHeader{Filename: "logo2.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/store/logo.png"}, images.deleted)
}

type brokenCache struct{}

func (brokenCache) GetJSON(context.Context, string, any) error { return assert.AnError }
func (brokenCache) SetJSON(context.Context, string, any, time.Duration) error {
	return assert.AnError
}
func (brokenCache) Del(context.Context, ...string) error { return assert.AnError }

func TestGetStoreInfo_CacheDown(t *testing.T) {
	repo := &memoryRepo{info: StoreInfo{ID: singletonID, Name: "Cửa hàng"}}
	svc := NewService(repo, brokenCache{}, &fakeImages{}, logger.Discard())

	info, err := svc.GetStoreInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cửa hàng", info.Name)

	_, err = svc.UpdateStoreInfo(context.Background(), &UpdateRequest{Name: "Shop"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Shop", repo.info.Name)
}
