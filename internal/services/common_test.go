package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/normalize"
	"github.com/shelfscout/shelfscout-backend/internal/types"
	"go.uber.org/zap"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func strPtr(s string) *string { return &s }

func centsPtr(c int64) *int64 { return &c }

func timePtr(t time.Time) *time.Time { return &t }

// fakeListingRepo mirrors the repo's SQL-side normalization in Go so the
// services see the same matching behavior the store would give them.
type fakeListingRepo struct {
	rows    []*types.ListingRecord
	failAll bool
}

var errStoreDown = gorm.ErrInvalidDB

func (f *fakeListingRepo) newestOf(rows []*types.ListingRecord) *types.ListingRecord {
	if len(rows) == 0 {
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastObserved().After(rows[j].LastObserved())
	})
	return rows[0]
}

func (f *fakeListingRepo) GetNewestByStoreSKU(ctx context.Context, tx *gorm.DB, store, sku string) (*types.ListingRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.ListingRecord
	for _, r := range f.rows {
		if normalize.Code(r.Store) == normalize.Code(store) && normalize.Code(r.StoreSKU) == normalize.Code(sku) {
			matched = append(matched, r)
		}
	}
	return f.newestOf(matched), nil
}

func (f *fakeListingRepo) GetNewestByPCI(ctx context.Context, tx *gorm.DB, pci string) (*types.ListingRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.ListingRecord
	for _, r := range f.rows {
		if r.PCI != nil && normalize.Code(*r.PCI) == normalize.Code(pci) {
			matched = append(matched, r)
		}
	}
	return f.newestOf(matched), nil
}

func (f *fakeListingRepo) GetNewestByUPC(ctx context.Context, tx *gorm.DB, upc string) (*types.ListingRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.ListingRecord
	for _, r := range f.rows {
		if r.UPC != nil && normalize.UPC(*r.UPC) == normalize.UPC(upc) {
			matched = append(matched, r)
		}
	}
	return f.newestOf(matched), nil
}

func (f *fakeListingRepo) matchesIdentity(r *types.ListingRecord, pci, upc string) bool {
	if pci != "" && r.PCI != nil && normalize.Code(*r.PCI) == normalize.Code(pci) {
		return true
	}
	if upc != "" && r.UPC != nil && normalize.UPC(*r.UPC) == normalize.UPC(upc) {
		return true
	}
	return false
}

func (f *fakeListingRepo) GetActiveByIdentity(ctx context.Context, tx *gorm.DB, pci, upc string) ([]*types.ListingRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.ListingRecord
	for _, r := range f.rows {
		if r.Hidden() || !f.matchesIdentity(r, pci, upc) {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastObserved().After(matched[j].LastObserved())
	})
	return matched, nil
}

func (f *fakeListingRepo) GetObservedByIdentity(ctx context.Context, tx *gorm.DB, pci, upc string, limit int) ([]*types.ListingRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.ListingRecord
	for _, r := range f.rows {
		if r.Hidden() || (r.CurrentPriceObservedAt == nil && r.CouponObservedAt == nil) {
			continue
		}
		if !f.matchesIdentity(r, pci, upc) {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastObserved().After(matched[j].LastObserved())
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

type fakeCatalogRepo struct {
	rows    []*types.CatalogRecord
	failAll bool
}

func (f *fakeCatalogRepo) GetNewestByPCI(ctx context.Context, tx *gorm.DB, pci string) (*types.CatalogRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.CatalogRecord
	for _, r := range f.rows {
		if r.PCI != nil && normalize.Code(*r.PCI) == normalize.Code(pci) {
			matched = append(matched, r)
		}
	}
	return newestCatalog(matched), nil
}

func (f *fakeCatalogRepo) GetNewestByUPC(ctx context.Context, tx *gorm.DB, upc string) (*types.CatalogRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.CatalogRecord
	for _, r := range f.rows {
		if r.UPC != nil && normalize.UPC(*r.UPC) == normalize.UPC(upc) {
			matched = append(matched, r)
		}
	}
	return newestCatalog(matched), nil
}

func (f *fakeCatalogRepo) GetFamily(ctx context.Context, tx *gorm.DB, modelNumber string) ([]*types.CatalogRecord, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.CatalogRecord
	for _, r := range f.rows {
		if strings.EqualFold(r.ModelNumber, modelNumber) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func newestCatalog(rows []*types.CatalogRecord) *types.CatalogRecord {
	if len(rows) == 0 {
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows[0]
}

type fakeHistoryRepo struct {
	samples []*types.PriceHistorySample
	failAll bool
}

func (f *fakeHistoryRepo) GetByIdentitySince(ctx context.Context, tx *gorm.DB, pci, upc string, since time.Time) ([]*types.PriceHistorySample, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var matched []*types.PriceHistorySample
	for _, s := range f.samples {
		if s.ObservedAt.Before(since) {
			continue
		}
		matchPCI := pci != "" && s.PCI != nil && normalize.Code(*s.PCI) == normalize.Code(pci)
		matchUPC := upc != "" && s.UPC != nil && normalize.UPC(*s.UPC) == normalize.UPC(upc)
		if matchPCI || matchUPC {
			matched = append(matched, s)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ObservedAt.Before(matched[j].ObservedAt)
	})
	return matched, nil
}
