package services

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	redisclient "github.com/shelfscout/shelfscout-backend/internal/clients/redis"
	"github.com/shelfscout/shelfscout-backend/internal/keys"
	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/normalize"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

type ResolveService interface {
	Resolve(ctx context.Context, rawKey string) (*types.ResolveResult, error)
}

type resolveService struct {
	db      *gorm.DB
	log     *logger.Logger
	seeds   SeedResolverService
	catalog CatalogService
	offers  OfferService
	stats   PriceStatsService
	cache   redisclient.ResolutionCache
}

// NewResolveService wires the full resolution cascade. cache may be nil;
// caching is an optimization, never a dependency.
func NewResolveService(db *gorm.DB, baseLog *logger.Logger, seeds SeedResolverService, catalog CatalogService, offers OfferService, stats PriceStatsService, cache redisclient.ResolutionCache) ResolveService {
	serviceLog := baseLog.With("service", "ResolveService")
	return &resolveService{
		db:      db,
		log:     serviceLog,
		seeds:   seeds,
		catalog: catalog,
		offers:  offers,
		stats:   stats,
		cache:   cache,
	}
}

// Resolve runs the cascade: parse, seed, catalog identity, then the four
// independent projections concurrently. A seed-stage store failure is
// fatal; any other component failure degrades to an absent field reported
// in Unavailable.
func (rs *resolveService) Resolve(ctx context.Context, rawKey string) (*types.ResolveResult, error) {
	key := keys.Parse(rawKey)

	if rs.cache != nil {
		if cached, ok := rs.cache.Get(ctx, key.String()); ok {
			// The cached copy echoes whichever spelling filled it first.
			cached.Input = rawKey
			return cached, nil
		}
	}

	seed, err := rs.seeds.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	result := &types.ResolveResult{
		Status: types.ResolveStatusOK,
		Input:  rawKey,
		Key:    key.String(),
	}

	catalogRec, catErr := rs.catalog.ResolveIdentity(ctx, seed.PCI, seed.UPC)
	if catErr != nil {
		rs.log.Error("Catalog identity lookup failed", "key", key.String(), "error", catErr)
		result.Unavailable = append(result.Unavailable, "identity")
	}

	if catalogRec == nil && seed.Listing == nil && !seed.HasIdentity() {
		return &types.ResolveResult{
			Status: types.ResolveStatusNotFound,
			Input:  rawKey,
			Key:    key.String(),
		}, nil
	}

	identity, pci, upc := buildIdentity(seed, catalogRec)
	result.Identity = identity
	result.CanonicalKey = canonicalKey(pci, upc)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	markUnavailable := func(component string, err error) {
		rs.log.Warn("Component lookup failed", "component", component, "key", key.String(), "error", err)
		mu.Lock()
		result.Unavailable = append(result.Unavailable, component)
		mu.Unlock()
	}

	if catalogRec != nil {
		g.Go(func() error {
			variants, err := rs.catalog.ExpandVariants(gctx, catalogRec.ModelNumber)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				markUnavailable("variants", err)
				return nil
			}
			result.Variants = variants
			return nil
		})
	}

	g.Go(func() error {
		offers, err := rs.offers.Aggregate(gctx, pci, upc, seed.Listing)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			markUnavailable("offers", err)
			return nil
		}
		result.Offers = offers
		return nil
	})

	g.Go(func() error {
		observations, err := rs.offers.Observations(gctx, pci, upc, seed.Listing)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			markUnavailable("observations", err)
			return nil
		}
		result.Observations = observations
		return nil
	})

	if pci != "" || upc != "" {
		g.Go(func() error {
			stats, err := rs.stats.Stats(gctx, pci, upc, defaultLookbackDays)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				markUnavailable("stats", err)
				return nil
			}
			result.Stats = &stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Only context cancellation reaches here.
		return nil, err
	}

	if rs.cache != nil && len(result.Unavailable) == 0 {
		rs.cache.Set(ctx, key.String(), result)
	}
	return result, nil
}

// buildIdentity merges the catalog record with the seed. When the catalog
// never resolved, the seed listing's title is all the identity we have.
func buildIdentity(seed Seed, catalogRec *types.CatalogRecord) (*types.ResolvedIdentity, string, string) {
	pci := seed.PCI
	upc := seed.UPC
	identity := &types.ResolvedIdentity{
		ASINInputEcho: seed.ASINEcho,
	}
	if catalogRec != nil {
		if v := strPtrValue(catalogRec.PCI); v != "" {
			pci = v
		}
		if v := strPtrValue(catalogRec.UPC); v != "" {
			upc = normalize.Digits(v)
		}
		identity.ModelNumber = catalogRec.ModelNumber
		identity.ModelName = catalogRec.Name
		identity.Brand = catalogRec.Brand
		identity.Category = catalogRec.Category
		identity.ImageURL = catalogRec.ImageURL
		identity.DropshipWarning = catalogRec.DropshipWarning
		identity.RecallURL = strPtrValue(catalogRec.RecallURL)
		identity.CoverageWarning = catalogRec.CoverageWarning
	} else if seed.Listing != nil {
		identity.ModelName = seed.Listing.Title
	}
	identity.PCI = strings.TrimSpace(pci)
	identity.UPC = strings.TrimSpace(upc)
	return identity, identity.PCI, identity.UPC
}

// canonicalKey builds the shareable selector key; pci always wins over
// upc when both are known.
func canonicalKey(pci, upc string) string {
	if pci != "" {
		return "pci:" + normalize.PCI(pci)
	}
	if upc != "" {
		return "upc:" + normalize.UPC(upc)
	}
	return ""
}
