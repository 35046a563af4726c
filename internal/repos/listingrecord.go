package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

// observedAtExpr is the observation-recency fallback chain used for every
// "newest first" ordering over listings.
const observedAtExpr = "COALESCE(current_price_observed_at, coupon_observed_at, created_at)"

type ListingRecordRepo interface {
	GetNewestByStoreSKU(ctx context.Context, tx *gorm.DB, store, sku string) (*types.ListingRecord, error)
	GetNewestByPCI(ctx context.Context, tx *gorm.DB, pci string) (*types.ListingRecord, error)
	GetNewestByUPC(ctx context.Context, tx *gorm.DB, upc string) (*types.ListingRecord, error)
	GetActiveByIdentity(ctx context.Context, tx *gorm.DB, pci, upc string) ([]*types.ListingRecord, error)
	GetObservedByIdentity(ctx context.Context, tx *gorm.DB, pci, upc string, limit int) ([]*types.ListingRecord, error)
}

type listingRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewListingRecordRepo(db *gorm.DB, baseLog *logger.Logger) ListingRecordRepo {
	repoLog := baseLog.With("repo", "ListingRecordRepo")
	return &listingRecordRepo{db: db, log: repoLog}
}

func (lr *listingRecordRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return lr.db
}

func (lr *listingRecordRepo) GetNewestByStoreSKU(ctx context.Context, tx *gorm.DB, store, sku string) (*types.ListingRecord, error) {
	var results []*types.ListingRecord
	if err := lr.conn(tx).WithContext(ctx).
		Where("normalize_code(store) = normalize_code(?)", store).
		Where("normalize_code(store_sku) = normalize_code(?)", sku).
		Order(observedAtExpr + " DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (lr *listingRecordRepo) GetNewestByPCI(ctx context.Context, tx *gorm.DB, pci string) (*types.ListingRecord, error) {
	var results []*types.ListingRecord
	if err := lr.conn(tx).WithContext(ctx).
		Where("pci IS NOT NULL AND normalize_code(pci) = normalize_code(?)", pci).
		Order(observedAtExpr + " DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (lr *listingRecordRepo) GetNewestByUPC(ctx context.Context, tx *gorm.DB, upc string) (*types.ListingRecord, error) {
	var results []*types.ListingRecord
	if err := lr.conn(tx).WithContext(ctx).
		Where("upc IS NOT NULL AND normalize_upc(upc) = normalize_upc(?)", upc).
		Order(observedAtExpr + " DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// GetActiveByIdentity returns every non-hidden listing matching either
// identity code, newest first. At least one of pci/upc must be non-empty.
func (lr *listingRecordRepo) GetActiveByIdentity(ctx context.Context, tx *gorm.DB, pci, upc string) ([]*types.ListingRecord, error) {
	var results []*types.ListingRecord
	if pci == "" && upc == "" {
		return results, nil
	}
	q := lr.conn(tx).WithContext(ctx).
		Where("status IS DISTINCT FROM ?", types.ListingStatusHidden).
		Where(identityClause(pci, upc), identityArgs(pci, upc)...).
		Order(observedAtExpr + " DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetObservedByIdentity returns the newest non-hidden matching rows that
// carry an observation timestamp, for the activity timeline. No dedup.
func (lr *listingRecordRepo) GetObservedByIdentity(ctx context.Context, tx *gorm.DB, pci, upc string, limit int) ([]*types.ListingRecord, error) {
	var results []*types.ListingRecord
	if pci == "" && upc == "" {
		return results, nil
	}
	q := lr.conn(tx).WithContext(ctx).
		Where("status IS DISTINCT FROM ?", types.ListingStatusHidden).
		Where("COALESCE(current_price_observed_at, coupon_observed_at) IS NOT NULL").
		Where(identityClause(pci, upc), identityArgs(pci, upc)...).
		Order(observedAtExpr + " DESC").
		Limit(limit)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func identityClause(pci, upc string) string {
	switch {
	case pci != "" && upc != "":
		return "(pci IS NOT NULL AND normalize_code(pci) = normalize_code(?)) OR (upc IS NOT NULL AND normalize_upc(upc) = normalize_upc(?))"
	case pci != "":
		return "pci IS NOT NULL AND normalize_code(pci) = normalize_code(?)"
	default:
		return "upc IS NOT NULL AND normalize_upc(upc) = normalize_upc(?)"
	}
}

func identityArgs(pci, upc string) []interface{} {
	switch {
	case pci != "" && upc != "":
		return []interface{}{pci, upc}
	case pci != "":
		return []interface{}{pci}
	default:
		return []interface{}{upc}
	}
}
