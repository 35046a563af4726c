package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/keys"
	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/normalize"
	"github.com/shelfscout/shelfscout-backend/internal/repos"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

// storeForKind maps store-scoped key kinds to their canonical store name.
var storeForKind = map[keys.Kind]string{
	keys.KindASIN:    "amazon",
	keys.KindBestBuy: "bestbuy",
	keys.KindWalmart: "walmart",
	keys.KindTarget:  "target",
}

// Seed is the outcome of the first resolution stage: whatever identity
// codes the typed key surfaced, plus the listing that carried them. A
// direct pci/upc key seeds its own code even when no listing matches, so
// catalog resolution can still proceed without a bridge.
type Seed struct {
	PCI      string
	UPC      string
	ASINEcho string
	Listing  *types.ListingRecord
}

// HasIdentity reports whether at least one identity code was surfaced.
func (s Seed) HasIdentity() bool {
	return s.PCI != "" || s.UPC != ""
}

type SeedResolverService interface {
	Resolve(ctx context.Context, key keys.Key) (Seed, error)
}

type seedResolverService struct {
	db       *gorm.DB
	log      *logger.Logger
	listings repos.ListingRecordRepo
}

func NewSeedResolverService(db *gorm.DB, baseLog *logger.Logger, listings repos.ListingRecordRepo) SeedResolverService {
	serviceLog := baseLog.With("service", "SeedResolverService")
	return &seedResolverService{db: db, log: serviceLog, listings: listings}
}

// Resolve maps a typed key to the most recently observed matching listing
// and surfaces its identity codes. A missing row is not an error; a store
// failure here is, since nothing downstream can run without this stage.
func (sr *seedResolverService) Resolve(ctx context.Context, key keys.Key) (Seed, error) {
	seed := seedFromKey(key)

	var (
		listing *types.ListingRecord
		err     error
	)
	switch key.Kind {
	case keys.KindASIN, keys.KindBestBuy, keys.KindWalmart, keys.KindTarget:
		listing, err = sr.listings.GetNewestByStoreSKU(ctx, nil, storeForKind[key.Kind], key.Value)
	case keys.KindUPC:
		listing, err = sr.listings.GetNewestByUPC(ctx, nil, key.Value)
	case keys.KindPCI:
		listing, err = sr.listings.GetNewestByPCI(ctx, nil, key.Value)
	case keys.KindRaw:
		// Re-run the shape heuristics; an unclassifiable value has no
		// lookup path and resolves to an empty seed.
		if reclassified, ok := keys.Classify(key.Value); ok && reclassified.Kind != keys.KindRaw {
			return sr.Resolve(ctx, reclassified)
		}
		return seed, nil
	default:
		return seed, nil
	}
	if err != nil {
		sr.log.Error("Seed listing lookup failed", "kind", key.Kind, "error", err)
		return Seed{}, err
	}
	if listing == nil {
		return seed, nil
	}

	seed.Listing = listing
	if seed.PCI == "" && listing.PCI != nil {
		seed.PCI = strings.TrimSpace(*listing.PCI)
	}
	if seed.UPC == "" && listing.UPC != nil {
		seed.UPC = normalize.Digits(*listing.UPC)
	}
	return seed, nil
}

func seedFromKey(key keys.Key) Seed {
	switch key.Kind {
	case keys.KindPCI:
		return Seed{PCI: key.Value}
	case keys.KindUPC:
		return Seed{UPC: key.Value}
	case keys.KindASIN:
		return Seed{ASINEcho: key.Value}
	default:
		return Seed{}
	}
}
