package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCatalogRoundTrip(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.PutProduct(Product{ID: "coke2l", CanonicalName: "Coca-Cola 2 Liter Bottle", Brand: "Coca-Cola"}))
	require.NoError(t, c.PutAvailability("coke2l", "storeABC", Availability{CurrentPrice: 7.99, Currency: "BRL", InStock: true}))
	require.NoError(t, c.PutStore(Store{
		ID:   "storeABC",
		Name: "Supermercado Central",
		Location: &StoreLocation{
			City:        "São Paulo",
			CountryCode: "BR",
			Coordinates: &Coordinates{Lat: -23.55, Lng: -46.63},
		},
		DefaultCurrency: "BRL",
	}))

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Coca-Cola 2 Liter Bottle", products["coke2l"].CanonicalName)

	avail, err := c.Availability(context.Background(), "coke2l")
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, 7.99, avail["storeABC"].CurrentPrice)
	assert.True(t, avail["storeABC"].InStock)

	store, err := c.Store(context.Background(), "storeABC")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, "Supermercado Central", store.Name)
	require.NotNil(t, store.Location)
	assert.Equal(t, "BR", store.Location.CountryCode)
	require.NotNil(t, store.Location.Coordinates)
	assert.Equal(t, -23.55, store.Location.Coordinates.Lat)
}

func TestSQLiteCatalogMisses(t *testing.T) {
	c := newTestCatalog(t)

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	avail, err := c.Availability(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, avail)

	store, err := c.Store(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestSQLiteCatalogUpsert(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.PutProduct(Product{ID: "p1", CanonicalName: "Old Name"}))
	require.NoError(t, c.PutProduct(Product{ID: "p1", CanonicalName: "New Name", Brand: "Brand"}))

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "New Name", products["p1"].CanonicalName)
	assert.Equal(t, "Brand", products["p1"].Brand)
}

func TestSQLiteCatalogWithResolver(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.PutProduct(Product{ID: "coke2l", CanonicalName: "Coca-Cola 2 Liter Bottle"}))
	require.NoError(t, c.PutAvailability("coke2l", "storeABC", Availability{CurrentPrice: 7.99, Currency: "BRL"}))
	require.NoError(t, c.PutAvailability("coke2l", "storeXYZ", Availability{CurrentPrice: 7.85, Currency: "BRL"}))
	require.NoError(t, c.PutStore(Store{ID: "storeABC", Name: "Supermercado Central"}))
	require.NoError(t, c.PutStore(Store{ID: "storeXYZ", Name: "Mercado Preço Bom"}))

	resolver := NewResolver(c)
	stores, err := resolver.FindStores(context.Background(), StoreSearchRequest{ProductName: "Coca-Cola 2 Liter Bottle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Supermercado Central", "Mercado Preço Bom"}, stores)
}
