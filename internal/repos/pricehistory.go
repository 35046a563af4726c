package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

type PriceHistoryRepo interface {
	GetByIdentitySince(ctx context.Context, tx *gorm.DB, pci, upc string, since time.Time) ([]*types.PriceHistorySample, error)
}

type priceHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPriceHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PriceHistoryRepo {
	repoLog := baseLog.With("repo", "PriceHistoryRepo")
	return &priceHistoryRepo{db: db, log: repoLog}
}

func (pr *priceHistoryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return pr.db
}

func (pr *priceHistoryRepo) GetByIdentitySince(ctx context.Context, tx *gorm.DB, pci, upc string, since time.Time) ([]*types.PriceHistorySample, error) {
	var results []*types.PriceHistorySample
	if pci == "" && upc == "" {
		return results, nil
	}
	if err := pr.conn(tx).WithContext(ctx).
		Where("observed_at >= ?", since).
		Where(identityClause(pci, upc), identityArgs(pci, upc)...).
		Order("observed_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
