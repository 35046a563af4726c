package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/repos"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

const (
	defaultLookbackDays = 90
	typicalLowWindow90  = 90
	typicalLowWindow30  = 30

	// typicalLowPercentile picks "a price you can realistically expect to
	// see again soon" without being skewed by one-off flash-sale minimums.
	typicalLowPercentile = 0.20
)

type PriceStatsService interface {
	Stats(ctx context.Context, pci, upc string, lookbackDays int) (types.PriceStats, error)
}

type priceStatsService struct {
	db      *gorm.DB
	log     *logger.Logger
	history repos.PriceHistoryRepo
	now     func() time.Time
}

func NewPriceStatsService(db *gorm.DB, baseLog *logger.Logger, history repos.PriceHistoryRepo) PriceStatsService {
	serviceLog := baseLog.With("service", "PriceStatsService")
	return &priceStatsService{db: db, log: serviceLog, history: history, now: time.Now}
}

// Stats computes the rolling price statistics for an identity. Without an
// identity code the computation is skipped outright; a seed-only match is
// too weak an anchor to make the numbers meaningful.
func (ps *priceStatsService) Stats(ctx context.Context, pci, upc string, lookbackDays int) (types.PriceStats, error) {
	if pci == "" && upc == "" {
		return types.PriceStats{}, nil
	}
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	now := ps.now().UTC()
	since := now.AddDate(0, 0, -lookbackDays)
	samples, err := ps.history.GetByIdentitySince(ctx, nil, pci, upc, since)
	if err != nil {
		return types.PriceStats{}, err
	}
	return ComputePriceStats(samples, now), nil
}

// ComputePriceStats derives daily lows and the windowed statistics from
// raw samples. Pure; now anchors the trailing windows.
func ComputePriceStats(samples []*types.PriceHistorySample, now time.Time) types.PriceStats {
	lows := dailyLows(samples)
	if len(lows) == 0 {
		return types.PriceStats{}
	}

	stats := types.PriceStats{DailyLows: lows}

	cutoff90 := now.UTC().AddDate(0, 0, -typicalLowWindow90).Format("2006-01-02")
	cutoff30 := now.UTC().AddDate(0, 0, -typicalLowWindow30).Format("2006-01-02")

	if tl := typicalLow(lows, cutoff90); tl != nil {
		stats.TypicalLow90 = tl
	}
	if tl := typicalLow(lows, cutoff30); tl != nil {
		stats.TypicalLow30 = tl
	}

	for _, low := range lows {
		if low.Date < cutoff30 {
			continue
		}
		if stats.Low30Cents == nil || low.PriceCents < *stats.Low30Cents {
			cents := low.PriceCents
			stats.Low30Cents = &cents
			stats.Low30Date = low.Date
		}
	}
	return stats
}

// dailyLows groups samples by UTC calendar day and takes the minimum
// usable price per day. effective_price_cents wins over price_cents;
// non-positive and null values are excluded.
func dailyLows(samples []*types.PriceHistorySample) []types.DailyLow {
	byDay := make(map[string]int64)
	for _, s := range samples {
		price := samplePrice(s)
		if price <= 0 {
			continue
		}
		day := s.ObservedAt.UTC().Format("2006-01-02")
		if existing, ok := byDay[day]; !ok || price < existing {
			byDay[day] = price
		}
	}
	lows := make([]types.DailyLow, 0, len(byDay))
	for day, price := range byDay {
		lows = append(lows, types.DailyLow{Date: day, PriceCents: price})
	}
	sort.Slice(lows, func(i, j int) bool { return lows[i].Date < lows[j].Date })
	return lows
}

func samplePrice(s *types.PriceHistorySample) int64 {
	if s.EffectivePriceCents != nil && *s.EffectivePriceCents > 0 {
		return *s.EffectivePriceCents
	}
	if s.PriceCents != nil {
		return *s.PriceCents
	}
	return 0
}

func typicalLow(lows []types.DailyLow, cutoff string) *float64 {
	var values []float64
	for _, low := range lows {
		if low.Date >= cutoff {
			values = append(values, float64(low.PriceCents))
		}
	}
	if len(values) == 0 {
		return nil
	}
	p := percentile(values, typicalLowPercentile)
	return &p
}

// percentile computes the continuous (interpolated) percentile, not
// nearest-rank. p is in [0, 1].
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
