package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteCatalog is a local catalog backed by sqlite. It implements Reader
// and additionally supports writes for seeding test/demo data.
type SQLiteCatalog struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteCatalog opens (creating if needed) a sqlite catalog at dbPath.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	c := &SQLiteCatalog{db: db}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCatalog) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			canonical_name TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS availability (
			product_id TEXT NOT NULL,
			store_id TEXT NOT NULL,
			current_price REAL NOT NULL,
			currency TEXT NOT NULL,
			in_stock INTEGER NOT NULL DEFAULT 0,
			product_url TEXT NOT NULL DEFAULT '',
			last_seen INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (product_id, store_id)
		);`,
		`CREATE TABLE IF NOT EXISTS stores (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			country_code TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			lat REAL,
			lng REAL,
			default_currency TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, q := range queries {
		if _, err := c.db.Exec(q); err != nil {
			return fmt.Errorf("failed to create catalog tables: %w", err)
		}
	}
	return nil
}

// Products implements Reader.
func (c *SQLiteCatalog) Products(ctx context.Context) (map[string]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx, "SELECT id, canonical_name, brand FROM products")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]Product)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CanonicalName, &p.Brand); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// Availability implements Reader.
func (c *SQLiteCatalog) Availability(ctx context.Context, productID string) (map[string]Availability, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		"SELECT store_id, current_price, currency, in_stock, product_url, last_seen FROM availability WHERE product_id = ?",
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	avail := make(map[string]Availability)
	for rows.Next() {
		var storeID string
		var a Availability
		if err := rows.Scan(&storeID, &a.CurrentPrice, &a.Currency, &a.InStock, &a.ProductURL, &a.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		avail[storeID] = a
	}
	return avail, rows.Err()
}

// Store implements Reader. Returns nil, nil when the store doesn't exist.
func (c *SQLiteCatalog) Store(ctx context.Context, storeID string) (*Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Store
	var address, city, country, postal string
	var lat, lng sql.NullFloat64
	err := c.db.QueryRowContext(ctx,
		"SELECT id, name, address, city, country_code, postal_code, lat, lng, default_currency FROM stores WHERE id = ?",
		storeID,
	).Scan(&s.ID, &s.Name, &address, &city, &country, &postal, &lat, &lng, &s.DefaultCurrency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	if address != "" || city != "" || country != "" || postal != "" || lat.Valid {
		s.Location = &StoreLocation{
			Address:     address,
			City:        city,
			CountryCode: country,
			PostalCode:  postal,
		}
		if lat.Valid && lng.Valid {
			s.Location.Coordinates = &Coordinates{Lat: lat.Float64, Lng: lng.Float64}
		}
	}
	return &s, nil
}

// PutProduct inserts or replaces a product.
func (c *SQLiteCatalog) PutProduct(p Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`
		INSERT INTO products (id, canonical_name, brand) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			canonical_name = excluded.canonical_name,
			brand = excluded.brand
	`, p.ID, p.CanonicalName, p.Brand)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// PutAvailability inserts or replaces an availability record.
func (c *SQLiteCatalog) PutAvailability(productID, storeID string, a Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`
		INSERT INTO availability (product_id, store_id, current_price, currency, in_stock, product_url, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id, store_id) DO UPDATE SET
			current_price = excluded.current_price,
			currency = excluded.currency,
			in_stock = excluded.in_stock,
			product_url = excluded.product_url,
			last_seen = excluded.last_seen
	`, productID, storeID, a.CurrentPrice, a.Currency, a.InStock, a.ProductURL, a.LastSeen)
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}
	return nil
}

// PutStore inserts or replaces a store record.
func (c *SQLiteCatalog) PutStore(s Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var address, city, country, postal string
	var lat, lng any
	if s.Location != nil {
		address = s.Location.Address
		city = s.Location.City
		country = s.Location.CountryCode
		postal = s.Location.PostalCode
		if s.Location.Coordinates != nil {
			lat = s.Location.Coordinates.Lat
			lng = s.Location.Coordinates.Lng
		}
	}

	_, err := c.db.Exec(`
		INSERT INTO stores (id, name, address, city, country_code, postal_code, lat, lng, default_currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			country_code = excluded.country_code,
			postal_code = excluded.postal_code,
			lat = excluded.lat,
			lng = excluded.lng,
			default_currency = excluded.default_currency
	`, s.ID, s.Name, address, city, country, postal, lat, lng, s.DefaultCurrency)
	if err != nil {
		return fmt.Errorf("failed to upsert store: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
