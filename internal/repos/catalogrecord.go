package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

type CatalogRecordRepo interface {
	GetNewestByPCI(ctx context.Context, tx *gorm.DB, pci string) (*types.CatalogRecord, error)
	GetNewestByUPC(ctx context.Context, tx *gorm.DB, upc string) (*types.CatalogRecord, error)
	GetFamily(ctx context.Context, tx *gorm.DB, modelNumber string) ([]*types.CatalogRecord, error)
}

type catalogRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRecordRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRecordRepo {
	repoLog := baseLog.With("repo", "CatalogRecordRepo")
	return &catalogRecordRepo{db: db, log: repoLog}
}

func (cr *catalogRecordRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

// GetNewestByPCI returns the most recently created catalog row whose PCI
// matches, or nil when none does.
func (cr *catalogRecordRepo) GetNewestByPCI(ctx context.Context, tx *gorm.DB, pci string) (*types.CatalogRecord, error) {
	var results []*types.CatalogRecord
	if err := cr.conn(tx).WithContext(ctx).
		Where("pci IS NOT NULL AND normalize_code(pci) = normalize_code(?)", pci).
		Order("created_at DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// GetNewestByUPC matches on the digit-normalized barcode, tolerant of
// 12/13/14-digit encodings.
func (cr *catalogRecordRepo) GetNewestByUPC(ctx context.Context, tx *gorm.DB, upc string) (*types.CatalogRecord, error) {
	var results []*types.CatalogRecord
	if err := cr.conn(tx).WithContext(ctx).
		Where("upc IS NOT NULL AND normalize_upc(upc) = normalize_upc(?)", upc).
		Order("created_at DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// GetFamily returns every catalog row sharing the grouping code. Ordering
// for display happens in the variant expander.
func (cr *catalogRecordRepo) GetFamily(ctx context.Context, tx *gorm.DB, modelNumber string) ([]*types.CatalogRecord, error) {
	var results []*types.CatalogRecord
	if modelNumber == "" {
		return results, nil
	}
	if err := cr.conn(tx).WithContext(ctx).
		Where("lower(model_number) = lower(?)", modelNumber).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
