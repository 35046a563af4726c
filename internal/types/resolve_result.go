package types

import "time"

// Derived, per-request response types. None of these persist.

// ResolvedIdentity is the outcome of resolution: the anchor codes plus the
// catalog metadata of the record they landed on.
type ResolvedIdentity struct {
	PCI             string `json:"pci,omitempty"`
	UPC             string `json:"upc,omitempty"`
	ASINInputEcho   string `json:"asin_input_echo,omitempty"`
	ModelNumber     string `json:"model_number,omitempty"`
	ModelName       string `json:"model_name,omitempty"`
	Brand           string `json:"brand,omitempty"`
	Category        string `json:"category,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	DropshipWarning bool   `json:"dropship_warning,omitempty"`
	RecallURL       string `json:"recall_url,omitempty"`
	CoverageWarning bool   `json:"coverage_warning,omitempty"`
}

// Variant is one independently addressable member of a variant family.
type Variant struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	PCI     string `json:"pci,omitempty"`
	UPC     string `json:"upc,omitempty"`
	Version string `json:"version,omitempty"`
	Color   string `json:"color,omitempty"`
}

// OfferCandidate is one current offer after dedup and the per-store
// multiplicity policy.
type OfferCandidate struct {
	Store               string    `json:"store"`
	StoreSKU            string    `json:"store_sku"`
	Title               string    `json:"title,omitempty"`
	URL                 string    `json:"url,omitempty"`
	CurrentPriceCents   *int64    `json:"current_price_cents,omitempty"`
	EffectivePriceCents *int64    `json:"effective_price_cents,omitempty"`
	CouponText          string    `json:"coupon_text,omitempty"`
	CouponCents         *int64    `json:"coupon_cents,omitempty"`
	ObservedAt          time.Time `json:"observed_at"`
}

// ObservationEntry is one line of the raw recent-activity timeline.
type ObservationEntry struct {
	Time                time.Time `json:"time"`
	Store               string    `json:"store"`
	SKU                 string    `json:"sku"`
	PriceCents          *int64    `json:"price_cents,omitempty"`
	EffectivePriceCents *int64    `json:"effective_price_cents,omitempty"`
	CouponText          string    `json:"coupon_text,omitempty"`
}

// DailyLow is the minimum observed price for one UTC calendar day.
type DailyLow struct {
	Date       string `json:"date"`
	PriceCents int64  `json:"price_cents"`
}

// PriceStats carries the rolling price statistics. Typical lows are the
// interpolated 20th percentile of per-day lows over the trailing window.
type PriceStats struct {
	DailyLows    []DailyLow `json:"daily_lows,omitempty"`
	TypicalLow90 *float64   `json:"typical_low_90,omitempty"`
	TypicalLow30 *float64   `json:"typical_low_30,omitempty"`
	Low30Cents   *int64     `json:"low_30_cents,omitempty"`
	Low30Date    string     `json:"low_30_date,omitempty"`
}

const (
	ResolveStatusOK       = "ok"
	ResolveStatusNotFound = "not_found"
)

// ResolveResult is the merged response for one resolution request. A
// not_found result carries only Status, Input and Key so clients can tell
// it apart from a successful-but-sparse resolution.
type ResolveResult struct {
	Status       string             `json:"status"`
	Input        string             `json:"input"`
	Key          string             `json:"key"`
	CanonicalKey string             `json:"canonical_key,omitempty"`
	Identity     *ResolvedIdentity  `json:"identity,omitempty"`
	Variants     []Variant          `json:"variants,omitempty"`
	Offers       []OfferCandidate   `json:"offers,omitempty"`
	Observations []ObservationEntry `json:"observations,omitempty"`
	Stats        *PriceStats        `json:"stats,omitempty"`
	Unavailable  []string           `json:"unavailable,omitempty"`
}
