package types

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatusHidden marks listings excluded from aggregation. Any other
// status, including empty, counts as active.
const ListingStatusHidden = "hidden"

// ListingRecord is one observed offer from one storefront, produced by the
// external ingestion process. pci/upc are present only when ingestion
// managed to resolve them.
type ListingRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Store    string    `gorm:"column:store;not null;index" json:"store"`
	StoreSKU string    `gorm:"column:store_sku;not null;index" json:"store_sku"`

	PCI *string `gorm:"column:pci;index" json:"pci,omitempty"`
	UPC *string `gorm:"column:upc;index" json:"upc,omitempty"`

	Status string `gorm:"column:status;not null;default:'active'" json:"status"`
	Title  string `gorm:"column:title" json:"title"`
	URL    string `gorm:"column:url" json:"url"`

	CurrentPriceCents   *int64 `gorm:"column:current_price_cents" json:"current_price_cents,omitempty"`
	EffectivePriceCents *int64 `gorm:"column:effective_price_cents" json:"effective_price_cents,omitempty"`

	CouponText       *string    `gorm:"column:coupon_text" json:"coupon_text,omitempty"`
	CouponCents      *int64     `gorm:"column:coupon_cents" json:"coupon_cents,omitempty"`
	CouponObservedAt *time.Time `gorm:"column:coupon_observed_at" json:"coupon_observed_at,omitempty"`

	CurrentPriceObservedAt *time.Time `gorm:"column:current_price_observed_at" json:"current_price_observed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ListingRecord) TableName() string { return "listing_record" }

// Hidden reports whether the listing is excluded from aggregation.
func (l *ListingRecord) Hidden() bool {
	return l.Status == ListingStatusHidden
}

// LastObserved returns the listing's observation time using the fallback
// chain current_price_observed_at, coupon_observed_at, created_at.
func (l *ListingRecord) LastObserved() time.Time {
	if l.CurrentPriceObservedAt != nil {
		return *l.CurrentPriceObservedAt
	}
	if l.CouponObservedAt != nil {
		return *l.CouponObservedAt
	}
	return l.CreatedAt
}
