package service

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

const (
	statsCacheKey = "stats:summary"
	statsCacheTTL = 30 * time.Second
)

// StatsCache is the subset of cache.RedisCache the stats service needs.
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type PriceStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type Summary struct {
	TotalNumbers    int64            `json:"total_numbers"`
	RTSCount        int64            `json:"rts_count"`
	NonRTSCount     int64            `json:"non_rts_count"`
	ByCategory      map[string]int64 `json:"by_category"`
	TotalSales      int              `json:"total_sales"`
	PendingPayments int              `json:"pending_payments"`
	PortedOut       int              `json:"ported_out"`
	PurchasePrices  PriceStats       `json:"purchase_prices"`
	SalePrices      PriceStats       `json:"sale_prices"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// StatsService aggregates dashboard counters and price distributions.
// Summaries are cached briefly since every dashboard load asks for one.
type StatsService struct {
	numbers   NumberStore
	sales     SaleStore
	purchases PurchaseStore
	cache     StatsCache
	logger    logger.Logger
}

func NewStatsService(
	numbers NumberStore,
	sales SaleStore,
	purchases PurchaseStore,
	statsCache StatsCache,
	log logger.Logger,
) *StatsService {
	return &StatsService{
		numbers:   numbers,
		sales:     sales,
		purchases: purchases,
		cache:     statsCache,
		logger:    log,
	}
}

func (s *StatsService) Summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		var cached Summary
		if err := s.cache.GetJSON(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	rts, err := s.numbers.CountByStatus(ctx, models.StatusRTS)
	if err != nil {
		return nil, err
	}
	nonRTS, err := s.numbers.CountByStatus(ctx, models.StatusNonRTS)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.numbers.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	pendingPayments := 0
	portedOut := 0
	salePrices := make([]float64, 0, len(sales))
	for _, sale := range sales {
		if sale.PaymentStatus == models.PaymentPending {
			pendingPayments++
		}
		if sale.PortOutStatus == models.PortOutDone {
			portedOut++
		}
		salePrices = append(salePrices, sale.SalePrice)
	}

	purchasePrices := make([]float64, 0, len(purchases))
	for _, purchase := range purchases {
		purchasePrices = append(purchasePrices, purchase.Price)
	}

	summary := &Summary{
		TotalNumbers:    rts + nonRTS,
		RTSCount:        rts,
		NonRTSCount:     nonRTS,
		ByCategory:      byCategory,
		TotalSales:      len(sales),
		PendingPayments: pendingPayments,
		PortedOut:       portedOut,
		PurchasePrices:  describePrices(purchasePrices),
		SalePrices:      describePrices(salePrices),
		GeneratedAt:     time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, summary, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache stats summary",
				logger.Field{Key: "error", Value: err.Error()})
		}
	}

	return summary, nil
}

func describePrices(prices []float64) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	// Sample standard deviation is undefined for a single observation.
	stdDev := 0.0
	if len(sorted) > 1 {
		stdDev = stat.StdDev(sorted, nil)
	}

	return PriceStats{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: stdDev,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}
