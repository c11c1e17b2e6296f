// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// VisitCounter stores per-day visit counts
type VisitCounter interface {
	Incr(ctx context.Context, day time.Time) error
	Count(ctx context.Context, day time.Time) (int64, error)
}

// Service handles visit tracking and the admin dashboard
type Service struct {
	repo   Repository
	visits VisitCounter
	log    logrus.FieldLogger
	now    func() time.Time
	loc    *time.Location
}

// NewService creates a new analytics service. Days are cut in loc.
func NewService(repo Repository, visits VisitCounter, loc *time.Location, log logrus.FieldLogger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, visits: visits, log: log, now: time.Now, loc: loc}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Visits
	VisitsToday  int64            `json:"visitsToday"`
	VisitSeries  []TimeSeriesData `json:"visitSeries"`
	VisitsGrowth float64          `json:"visitsGrowth"`

	// Revenue counts PAID orders only
	TotalRevenue     int64   `json:"totalRevenue"`
	RevenueToday     int64   `json:"revenueToday"`
	RevenueThisMonth int64   `json:"revenueThisMonth"`
	RevenueGrowth    float64 `json:"revenueGrowth"`

	// Orders
	TotalOrders     int64        `json:"totalOrders"`
	OrdersToday     int64        `json:"ordersToday"`
	OrdersThisMonth int64        `json:"ordersThisMonth"`
	OrdersByStatus  []StatusData `json:"ordersByStatus"`
	AvgOrderValue   int64        `json:"avgOrderValue"`

	// Users and catalog
	TotalUsers  int64              `json:"totalUsers"`
	LockedUsers int64              `json:"lockedUsers"`
	Products    ProductCounts      `json:"products"`
	TopProducts []ProductSalesData `json:"topProducts"`
}

// TimeSeriesData is one point of a daily series
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// StatusData groups orders by status
type StatusData struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

// ProductCounts summarises the catalog
type ProductCounts struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	OutOfStock int64 `json:"outOfStock"`
	LowStock   int64 `json:"lowStock"`
}

// ProductSalesData ranks products by units sold
type ProductSalesData struct {
	ProductID    uint   `json:"productId"`
	ProductName  string `json:"productName"`
	QuantitySold int64  `json:"quantitySold"`
	Revenue      int64  `json:"revenue"`
}

// TrackVisit counts one storefront visit. Failures are logged, never returned.
func (s *Service) TrackVisit(ctx context.Context) {
	if err := s.visits.Incr(ctx, s.now().In(s.loc)); err != nil {
		s.log.WithError(err).Warn("failed to record visit")
	}
}

// GetDashboardStats collects the back office overview; visitDays sets the length of the visit series
func (s *Service) GetDashboardStats(ctx context.Context, visitDays int) (*DashboardStats, error) {
	if visitDays < 1 || visitDays > 90 {
		visitDays = 7
	}
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	stats := &DashboardStats{}
	var err error

	if stats.VisitSeries, err = s.visitSeries(ctx, today, visitDays); err != nil {
		return nil, err
	}
	stats.VisitsToday = stats.VisitSeries[len(stats.VisitSeries)-1].Value
	if len(stats.VisitSeries) > 1 {
		stats.VisitsGrowth = growth(stats.VisitsToday, stats.VisitSeries[len(stats.VisitSeries)-2].Value)
	}

	if stats.TotalRevenue, err = s.repo.PaidRevenue(ctx, time.Time{}, time.Time{}); err != nil {
		return nil, err
	}
	if stats.RevenueToday, err = s.repo.PaidRevenue(ctx, today, time.Time{}); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonth, err = s.repo.PaidRevenue(ctx, thisMonth, time.Time{}); err != nil {
		return nil, err
	}
	lastMonthRevenue, err := s.repo.PaidRevenue(ctx, lastMonth, thisMonth)
	if err != nil {
		return nil, err
	}
	stats.RevenueGrowth = growth(stats.RevenueThisMonth, lastMonthRevenue)

	if stats.TotalOrders, err = s.repo.CountOrders(ctx, time.Time{}, time.Time{}); err != nil {
		return nil, err
	}
	if stats.OrdersToday, err = s.repo.CountOrders(ctx, today, time.Time{}); err != nil {
		return nil, err
	}
	if stats.OrdersThisMonth, err = s.repo.CountOrders(ctx, thisMonth, time.Time{}); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = s.repo.OrdersByStatus(ctx); err != nil {
		return nil, err
	}

	var paidOrders int64
	for _, row := range stats.OrdersByStatus {
		if row.Status != "CANCELLED" && row.Status != "RETURNED" {
			paidOrders += row.Count
		}
	}
	if paidOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / paidOrders
	}

	if stats.TotalUsers, stats.LockedUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.Products, err = s.repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if stats.TopProducts, err = s.repo.TopProducts(ctx, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

// visitSeries returns days points ending today, oldest first
func (s *Service) visitSeries(ctx context.Context, today time.Time, days int) ([]TimeSeriesData, error) {
	series := make([]TimeSeriesData, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		n, err := s.visits.Count(ctx, day)
		if err != nil {
			return nil, err
		}
		series = append(series, TimeSeriesData{Date: day.Format("2006-01-02"), Value: n})
	}
	return series, nil
}

// growth is the percentage change from previous to current
func growth(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
