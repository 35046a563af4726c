package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/normalize"
	"github.com/shelfscout/shelfscout-backend/internal/repos"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

// storeOfferCaps is the per-store multiplicity policy. Marketplace stores
// carry many competing seller listings for one catalog item; everything
// not listed here collapses to its single newest offer.
var storeOfferCaps = map[string]int{
	"amazon": 10,
}

const defaultStoreOfferCap = 1

// observationLogLimit bounds the recent-activity timeline.
const observationLogLimit = 250

func storeOfferCap(store string) int {
	if limit, ok := storeOfferCaps[strings.ToLower(strings.TrimSpace(store))]; ok {
		return limit
	}
	return defaultStoreOfferCap
}

type OfferService interface {
	Aggregate(ctx context.Context, pci, upc string, seed *types.ListingRecord) ([]types.OfferCandidate, error)
	Observations(ctx context.Context, pci, upc string, seed *types.ListingRecord) ([]types.ObservationEntry, error)
}

type offerService struct {
	db       *gorm.DB
	log      *logger.Logger
	listings repos.ListingRecordRepo
}

func NewOfferService(db *gorm.DB, baseLog *logger.Logger, listings repos.ListingRecordRepo) OfferService {
	serviceLog := baseLog.With("service", "OfferService")
	return &offerService{db: db, log: serviceLog, listings: listings}
}

// Aggregate gathers every known current offer for an identity, unions in
// the seed listing so a row without identity codes is never dropped, and
// applies dedup and the per-store multiplicity policy.
func (ofs *offerService) Aggregate(ctx context.Context, pci, upc string, seed *types.ListingRecord) ([]types.OfferCandidate, error) {
	var rows []*types.ListingRecord
	if pci != "" || upc != "" {
		matched, err := ofs.listings.GetActiveByIdentity(ctx, nil, pci, upc)
		if err != nil {
			return nil, err
		}
		rows = matched
	}

	if seed != nil {
		current, err := ofs.listings.GetNewestByStoreSKU(ctx, nil, seed.Store, seed.StoreSKU)
		if err != nil {
			return nil, err
		}
		if current == nil {
			current = seed
		}
		rows = append(rows, current)
	}

	return AggregateOffers(rows), nil
}

// AggregateOffers applies the dedup, ordering and multiplicity rules to a
// gathered candidate set. Pure; exported for the orchestrator's tests.
func AggregateOffers(rows []*types.ListingRecord) []types.OfferCandidate {
	// Newest first, then dedup on normalized store+sku keeping the first
	// (newest) row per key.
	sorted := make([]*types.ListingRecord, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastObserved().After(sorted[j].LastObserved())
	})

	seen := make(map[string]bool, len(sorted))
	perStore := make(map[string]int, len(sorted))
	var capped []*types.ListingRecord
	var single []*types.ListingRecord
	for _, row := range sorted {
		key := offerDedupKey(row.Store, row.StoreSKU)
		if seen[key] {
			continue
		}
		seen[key] = true

		store := strings.ToLower(strings.TrimSpace(row.Store))
		limit := storeOfferCap(store)
		if perStore[store] >= limit {
			continue
		}
		perStore[store]++
		if limit > defaultStoreOfferCap {
			capped = append(capped, row)
		} else {
			single = append(single, row)
		}
	}

	// Marketplace offers keep recency order; the one-per-store remainder
	// sorts alphabetically for stable rendering.
	sort.SliceStable(single, func(i, j int) bool {
		return strings.ToLower(single[i].Store) < strings.ToLower(single[j].Store)
	})

	out := make([]types.OfferCandidate, 0, len(capped)+len(single))
	for _, row := range append(capped, single...) {
		out = append(out, toOfferCandidate(row))
	}
	return out
}

func offerDedupKey(store, sku string) string {
	return normalize.Code(store) + ":" + normalize.Code(sku)
}

func toOfferCandidate(row *types.ListingRecord) types.OfferCandidate {
	return types.OfferCandidate{
		Store:               row.Store,
		StoreSKU:            row.StoreSKU,
		Title:               row.Title,
		URL:                 row.URL,
		CurrentPriceCents:   row.CurrentPriceCents,
		EffectivePriceCents: row.EffectivePriceCents,
		CouponText:          strPtrValue(row.CouponText),
		CouponCents:         row.CouponCents,
		ObservedAt:          row.LastObserved(),
	}
}

// Observations builds the raw recent-activity timeline. Unlike Aggregate
// it applies no dedup and no multiplicity policy.
func (ofs *offerService) Observations(ctx context.Context, pci, upc string, seed *types.ListingRecord) ([]types.ObservationEntry, error) {
	if pci != "" || upc != "" {
		rows, err := ofs.listings.GetObservedByIdentity(ctx, nil, pci, upc, observationLogLimit)
		if err != nil {
			return nil, err
		}
		entries := make([]types.ObservationEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, toObservationEntry(row))
		}
		return entries, nil
	}
	if seed != nil {
		return []types.ObservationEntry{toObservationEntry(seed)}, nil
	}
	return nil, nil
}

func toObservationEntry(row *types.ListingRecord) types.ObservationEntry {
	return types.ObservationEntry{
		Time:                row.LastObserved(),
		Store:               row.Store,
		SKU:                 row.StoreSKU,
		PriceCents:          row.CurrentPriceCents,
		EffectivePriceCents: row.EffectivePriceCents,
		CouponText:          strPtrValue(row.CouponText),
	}
}
