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

// variantPlaceholderLabel is used when a catalog row has no descriptors
// and no name to label it with.
const variantPlaceholderLabel = "Standard"

type CatalogService interface {
	ResolveIdentity(ctx context.Context, pci, upc string) (*types.CatalogRecord, error)
	ExpandVariants(ctx context.Context, modelNumber string) ([]types.Variant, error)
}

type catalogService struct {
	db      *gorm.DB
	log     *logger.Logger
	catalog repos.CatalogRecordRepo
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, catalog repos.CatalogRecordRepo) CatalogService {
	serviceLog := baseLog.With("service", "CatalogService")
	return &catalogService{db: db, log: serviceLog, catalog: catalog}
}

// ResolveIdentity finds the authoritative catalog record for a pair of
// identity codes. A PCI hit wins outright; UPC is consulted only when PCI
// is absent or matched nothing. Returns nil when neither code resolves.
func (cs *catalogService) ResolveIdentity(ctx context.Context, pci, upc string) (*types.CatalogRecord, error) {
	if pci != "" {
		rec, err := cs.catalog.GetNewestByPCI(ctx, nil, pci)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	if upc != "" {
		rec, err := cs.catalog.GetNewestByUPC(ctx, nil, upc)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// ExpandVariants returns every selectable member of the variant family
// sharing a grouping code. Rows carrying neither pci nor upc are not
// independently addressable and are dropped.
func (cs *catalogService) ExpandVariants(ctx context.Context, modelNumber string) ([]types.Variant, error) {
	family, err := cs.catalog.GetFamily(ctx, nil, modelNumber)
	if err != nil {
		return nil, err
	}
	sortFamily(family)

	variants := make([]types.Variant, 0, len(family))
	for _, rec := range family {
		key := VariantKey(rec.PCI, rec.UPC)
		if key == "" {
			continue
		}
		variants = append(variants, types.Variant{
			Key:     key,
			Label:   variantLabel(rec),
			PCI:     strPtrValue(rec.PCI),
			UPC:     strPtrValue(rec.UPC),
			Version: strPtrValue(rec.Version),
			Color:   strPtrValue(rec.Color),
		})
	}
	return variants, nil
}

// VariantKey builds the stable selector key for a catalog row: pci wins
// over upc, and a row with neither has no key.
func VariantKey(pci, upc *string) string {
	if p := strPtrValue(pci); p != "" {
		return "pci:" + normalize.PCI(p)
	}
	if u := strPtrValue(upc); u != "" {
		return "upc:" + normalize.UPC(u)
	}
	return ""
}

// sortFamily orders a variant family for a selector UI: version, then
// free-form variant label, then color, nulls last each, then the identity
// key as a stable final tiebreak.
func sortFamily(family []*types.CatalogRecord) {
	sort.SliceStable(family, func(i, j int) bool {
		a, b := family[i], family[j]
		if c := compareNullable(a.Version, b.Version); c != 0 {
			return c < 0
		}
		if c := compareNullable(a.Variant, b.Variant); c != 0 {
			return c < 0
		}
		if c := compareNullable(a.Color, b.Color); c != 0 {
			return c < 0
		}
		return VariantKey(a.PCI, a.UPC) < VariantKey(b.PCI, b.UPC)
	})
}

// compareNullable orders non-empty strings case-insensitively and sorts
// nil/empty after everything else.
func compareNullable(a, b *string) int {
	av, bv := strPtrValue(a), strPtrValue(b)
	switch {
	case av == "" && bv == "":
		return 0
	case av == "":
		return 1
	case bv == "":
		return -1
	}
	return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
}

func variantLabel(rec *types.CatalogRecord) string {
	parts := make([]string, 0, 2)
	if v := strPtrValue(rec.Version); v != "" {
		parts = append(parts, v)
	}
	if c := strPtrValue(rec.Color); c != "" {
		parts = append(parts, c)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " / ")
	}
	if v := strPtrValue(rec.Variant); v != "" {
		return v
	}
	if rec.Name != "" {
		return rec.Name
	}
	return variantPlaceholderLabel
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
