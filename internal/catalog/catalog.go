// Package catalog provides read access to the product catalog: canonical
// products, per-store availability records and store records. Two backends
// exist, a Firebase Realtime Database REST reader and a local sqlite
// catalog, behind the same Reader interface.
package catalog

import (
	"context"
	"errors"
)

// ErrCatalogUnavailable wraps any data-access failure from a catalog
// backend. It lets callers distinguish "the product genuinely isn't there"
// (empty result, nil error) from "the catalog could not be reached".
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Product is a canonical product record. Free-text product names are
// matched against CanonicalName case-insensitively.
type Product struct {
	ID            string `json:"-"`
	CanonicalName string `json:"canonicalName"`
	Brand         string `json:"brand,omitempty"`
}

// Availability is one store's price/stock data for a product.
type Availability struct {
	CurrentPrice float64 `json:"currentPrice"`
	Currency     string  `json:"currency"`
	InStock      bool    `json:"inStock,omitempty"`
	ProductURL   string  `json:"productUrl,omitempty"`
	LastSeen     int64   `json:"lastSeen,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StoreLocation describes where a store is.
type StoreLocation struct {
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	CountryCode string       `json:"countryCode,omitempty"`
	PostalCode  string       `json:"postalCode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Store is a store record.
type Store struct {
	ID              string         `json:"-"`
	Name            string         `json:"name"`
	Location        *StoreLocation `json:"location,omitempty"`
	DefaultCurrency string         `json:"defaultCurrency,omitempty"`
}

// Reader reads catalog data. All methods treat "not there" as an empty
// result with a nil error; errors are reserved for backend failures.
type Reader interface {
	// Products returns all canonical products keyed by product id.
	Products(ctx context.Context) (map[string]Product, error)
	// Availability returns availability records for a product keyed by
	// store id. An unknown product id yields an empty map.
	Availability(ctx context.Context, productID string) (map[string]Availability, error)
	// Store returns a store record, or nil if the store doesn't exist.
	Store(ctx context.Context, storeID string) (*Store, error)
}
