// Package monitoring aggregates catalog price data for the price
// monitoring view: the product list and per-country average prices for a
// selected product.
package monitoring

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/realprice/realprice/internal/catalog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProductEntry is one selectable product in the monitoring view.
type ProductEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CountryPrice is the aggregated price data for one country.
type CountryPrice struct {
	CountryCode  string  `json:"countryCode"`
	AveragePrice float64 `json:"averagePrice"`
	Currency     string  `json:"currency"`
	RecordCount  int     `json:"productCount"`
}

// Monitor reads aggregated price data from a catalog.
type Monitor struct {
	reader catalog.Reader
}

// NewMonitor creates a monitor over the given catalog reader.
func NewMonitor(reader catalog.Reader) *Monitor {
	return &Monitor{reader: reader}
}

// Products lists all catalog products sorted by display name. A product
// without a canonical name gets a placeholder derived from its id.
func (m *Monitor) Products(ctx context.Context) ([]ProductEntry, error) {
	products, err := m.reader.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing products: %v", catalog.ErrCatalogUnavailable, err)
	}

	entries := make([]ProductEntry, 0, len(products))
	for id, p := range products {
		name := p.CanonicalName
		if name == "" {
			name = fmt.Sprintf("Produto %s", id)
		}
		entries = append(entries, ProductEntry{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// countryBucket accumulates prices for one country while scanning stores.
type countryBucket struct {
	prices   []float64
	currency string
}

// PricesByCountry aggregates a product's availability records into average
// prices per country. Records whose store is missing or has no country code
// are skipped. The currency is the availability record's currency, falling
// back to the store's default currency, then "N/A"; if a country mixes
// currencies the first one seen wins and a warning is logged. Results are
// sorted by country code.
func (m *Monitor) PricesByCountry(ctx context.Context, productID string) ([]CountryPrice, error) {
	avail, err := m.reader.Availability(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading availability for %s: %v", catalog.ErrCatalogUnavailable, productID, err)
	}
	if len(avail) == 0 {
		log.Debug().Str("productId", productID).Msg("no availability records to aggregate")
		return []CountryPrice{}, nil
	}

	storeIDs := make([]string, 0, len(avail))
	for id := range avail {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	stores := make([]*catalog.Store, len(storeIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range storeIDs {
		g.Go(func() error {
			store, err := m.reader.Store(gctx, storeIDs[i])
			if err != nil {
				return fmt.Errorf("loading store %s: %w", storeIDs[i], err)
			}
			stores[i] = store
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
	}

	buckets := make(map[string]*countryBucket)
	for i, store := range stores {
		storeID := storeIDs[i]
		if store == nil {
			log.Warn().Str("storeId", storeID).Msg("store record not found")
			continue
		}
		if store.Location == nil || store.Location.CountryCode == "" {
			log.Debug().Str("storeId", storeID).Msg("store has no country code, skipping")
			continue
		}

		country := store.Location.CountryCode
		record := avail[storeID]
		currency := record.Currency
		if currency == "" {
			currency = store.DefaultCurrency
		}
		if currency == "" {
			currency = "N/A"
		}

		bucket := buckets[country]
		if bucket == nil {
			bucket = &countryBucket{currency: currency}
			buckets[country] = bucket
		} else if bucket.currency != currency {
			log.Warn().
				Str("country", country).
				Str("kept", bucket.currency).
				Str("ignored", currency).
				Msg("mixed currencies for country, keeping the first seen")
		}
		bucket.prices = append(bucket.prices, record.CurrentPrice)
	}

	aggregated := make([]CountryPrice, 0, len(buckets))
	for country, bucket := range buckets {
		sum := 0.0
		for _, p := range bucket.prices {
			sum += p
		}
		avg := math.Round(sum/float64(len(bucket.prices))*100) / 100
		aggregated = append(aggregated, CountryPrice{
			CountryCode:  country,
			AveragePrice: avg,
			Currency:     bucket.currency,
			RecordCount:  len(bucket.prices),
		})
	}
	sort.Slice(aggregated, func(i, j int) bool { return aggregated[i].CountryCode < aggregated[j].CountryCode })

	log.Info().
		Str("productId", productID).
		Int("countries", len(aggregated)).
		Msg("price aggregation complete")

	return aggregated, nil
}
