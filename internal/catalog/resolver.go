package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// StoreSearchRequest is a request to find stores carrying a product.
// Latitude/Longitude, when supplied, are logged for future proximity
// ranking; the current lookup does not filter or reorder by them.
type StoreSearchRequest struct {
	ProductName string
	Latitude    *float64
	Longitude   *float64
}

// Resolver resolves a free-text product name to the stores that carry it:
// name -> product id -> availability records -> store names.
type Resolver struct {
	reader Reader
}

// NewResolver creates a store resolver over the given catalog reader.
func NewResolver(reader Reader) *Resolver {
	return &Resolver{reader: reader}
}

// FindStores runs the three-hop lookup. A miss at any hop returns an empty
// list with a nil error. A backend failure at any hop returns an error
// wrapping ErrCatalogUnavailable so callers can tell the two apart.
//
// Store order follows availability record keys (sorted for determinism);
// no distance ranking is applied.
func (r *Resolver) FindStores(ctx context.Context, req StoreSearchRequest) ([]string, error) {
	if req.Latitude != nil && req.Longitude != nil {
		log.Info().
			Str("product", req.ProductName).
			Float64("lat", *req.Latitude).
			Float64("lng", *req.Longitude).
			Msg("user location recorded for store search; proximity ranking not yet applied")
	}

	// Hop 1: product name -> product id, by case-insensitive exact match
	// on the canonical name.
	products, err := r.reader.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing products: %v", ErrCatalogUnavailable, err)
	}

	productID := ""
	for id, p := range products {
		if strings.EqualFold(p.CanonicalName, req.ProductName) {
			productID = id
			break
		}
	}
	if productID == "" {
		log.Debug().Str("product", req.ProductName).Msg("product not found in catalog")
		return []string{}, nil
	}

	// Hop 2: product id -> store ids with availability.
	avail, err := r.reader.Availability(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading availability for %s: %v", ErrCatalogUnavailable, productID, err)
	}
	if len(avail) == 0 {
		log.Debug().Str("productId", productID).Msg("no availability records for product")
		return []string{}, nil
	}

	storeIDs := make([]string, 0, len(avail))
	for id := range avail {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	// Hop 3: fetch each store record. Stores without a record or without a
	// name are skipped; only backend failure aborts the lookup.
	names := make([]string, len(storeIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range storeIDs {
		g.Go(func() error {
			store, err := r.reader.Store(gctx, storeIDs[i])
			if err != nil {
				return fmt.Errorf("loading store %s: %w", storeIDs[i], err)
			}
			if store == nil {
				log.Warn().Str("storeId", storeIDs[i]).Msg("store record not found")
				return nil
			}
			if store.Name == "" {
				log.Warn().Str("storeId", storeIDs[i]).Msg("store record has no name")
				return nil
			}
			names[i] = store.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	found := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			found = append(found, name)
		}
	}

	log.Info().
		Str("product", req.ProductName).
		Str("productId", productID).
		Strs("stores", found).
		Msg("store search complete")

	return found, nil
}
