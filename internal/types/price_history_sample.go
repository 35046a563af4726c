package types

import (
	"time"

	"github.com/google/uuid"
)

// PriceHistorySample is one timestamped price observation, keyed by the
// same identity codes as listings. Append-only; used only for statistics.
type PriceHistorySample struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PCI   *string   `gorm:"column:pci;index" json:"pci,omitempty"`
	UPC   *string   `gorm:"column:upc;index" json:"upc,omitempty"`
	Store string    `gorm:"column:store" json:"store"`

	PriceCents          *int64 `gorm:"column:price_cents" json:"price_cents,omitempty"`
	EffectivePriceCents *int64 `gorm:"column:effective_price_cents" json:"effective_price_cents,omitempty"`

	ObservedAt time.Time `gorm:"column:observed_at;not null;index" json:"observed_at"`
}

func (PriceHistorySample) TableName() string { return "price_history_sample" }
