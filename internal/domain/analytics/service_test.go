package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) PaidRevenue(_ context.Context, from, to time.Time) (int64, error) {
	args := m.Called(from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CountOrders(_ context.Context, from, to time.Time) (int64, error) {
	args := m.Called(from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) OrdersByStatus(_ context.Context) ([]StatusData, error) {
	args := m.Called()
	return args.Get(0).([]StatusData), args.Error(1)
}

func (m *mockRepo) CountUsers(_ context.Context) (int64, int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) CountProducts(_ context.Context) (ProductCounts, error) {
	args := m.Called()
	return args.Get(0).(ProductCounts), args.Error(1)
}

func (m *mockRepo) TopProducts(_ context.Context, limit int) ([]ProductSalesData, error) {
	args := m.Called(limit)
	return args.Get(0).([]ProductSalesData), args.Error(1)
}

var hcm = time.FixedZone("ICT", 7*60*60)

func newService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := NewService(repo, redis.NewVisitCounter(redis.NewClient(rdb), 24*time.Hour*90), hcm, logger.Discard())
	// 23:30 UTC on the 9th is already the 10th in Vietnam
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC) }
	return svc, mr
}

func TestTrackVisit_UsesLocalDay(t *testing.T) {
	svc, mr := newService(t, &mockRepo{})
	ctx := context.Background()

	svc.TrackVisit(ctx)
	svc.TrackVisit(ctx)

	v, err := mr.Get("visits:20240310")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestTrackVisit_SwallowsErrors(t *testing.T) {
	svc, mr := newService(t, &mockRepo{})
	mr.SetError("READONLY")
	assert.NotPanics(t, func() { svc.TrackVisit(context.Background()) })
}

func TestGetDashboardStats(t *testing.T) {
	repo := &mockRepo{}
	svc, mr := newService(t, repo)
	require.NoError(t, mr.Set("visits:20240310", "12"))
	require.NoError(t, mr.Set("visits:20240309", "8"))

	today := time.Date(2024, 3, 10, 0, 0, 0, 0, hcm)
	month := time.Date(2024, 3, 1, 0, 0, 0, 0, hcm)
	lastMonth := time.Date(2024, 2, 1, 0, 0, 0, 0, hcm)
	var zero time.Time

	repo.On("PaidRevenue", zero, zero).Return(int64(900000), nil)
	repo.On("PaidRevenue", today, zero).Return(int64(100000), nil)
	repo.On("PaidRevenue", month, zero).Return(int64(600000), nil)
	repo.On("PaidRevenue", lastMonth, month).Return(int64(300000), nil)
	repo.On("CountOrders", mock.Anything, mock.Anything).Return(int64(4), nil)
	repo.On("OrdersByStatus").Return([]StatusData{
		{Status: "DELIVERED", Count: 3, Amount: 900000},
		{Status: "CANCELLED", Count: 1, Amount: 50000},
	}, nil)
	repo.On("CountUsers").Return(int64(10), int64(1), nil)
	repo.On("CountProducts").Return(ProductCounts{Total: 20, Active: 18}, nil)
	repo.On("TopProducts", 5).Return([]ProductSalesData{{ProductID: 1, QuantitySold: 7}}, nil)

	stats, err := svc.GetDashboardStats(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.VisitsToday)
	require.Len(t, stats.VisitSeries, 3)
	assert.Equal(t, "2024-03-08", stats.VisitSeries[0].Date)
	assert.Equal(t, int64(0), stats.VisitSeries[0].Value)
	assert.InDelta(t, 50.0, stats.VisitsGrowth, 0.001)
	assert.InDelta(t, 100.0, stats.RevenueGrowth, 0.001)
	assert.Equal(t, int64(300000), stats.AvgOrderValue)
	assert.Equal(t, int64(1), stats.LockedUsers)
	repo.AssertExpectations(t)
}
