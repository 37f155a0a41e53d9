package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRTDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"coke2l": {"canonicalName": "Coca-Cola 2 Liter Bottle", "brand": "Coca-Cola"},
			"pepsi1l": {"canonicalName": "Pepsi 1 Liter Bottle", "brand": "Pepsi"}
		}`))
	})
	mux.HandleFunc("/productAvailability/coke2l.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"storeABC": {"currentPrice": 7.99, "currency": "BRL", "inStock": true},
			"storeXYZ": {"currentPrice": 7.85, "currency": "BRL", "inStock": true}
		}`))
	})
	mux.HandleFunc("/productAvailability/pepsi1l.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	mux.HandleFunc("/stores/storeABC.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Supermercado Central", "location": {"city": "São Paulo", "countryCode": "BR"}}`))
	})
	mux.HandleFunc("/stores/storeXYZ.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	mux.HandleFunc("/stores/missing.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	return httptest.NewServer(mux)
}

func TestRTDBReaderProducts(t *testing.T) {
	srv := newTestRTDBServer(t)
	defer srv.Close()

	r := NewRTDBReader(RTDBOpts{BaseURL: srv.URL})
	products, err := r.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "coke2l", products["coke2l"].ID)
	assert.Equal(t, "Coca-Cola 2 Liter Bottle", products["coke2l"].CanonicalName)
	assert.Equal(t, "Pepsi", products["pepsi1l"].Brand)
}

func TestRTDBReaderAvailability(t *testing.T) {
	srv := newTestRTDBServer(t)
	defer srv.Close()

	r := NewRTDBReader(RTDBOpts{BaseURL: srv.URL})

	avail, err := r.Availability(context.Background(), "coke2l")
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, 7.99, avail["storeABC"].CurrentPrice)
	assert.True(t, avail["storeABC"].InStock)

	// Missing node comes back as the literal "null" from RTDB.
	avail, err = r.Availability(context.Background(), "pepsi1l")
	require.NoError(t, err)
	assert.Empty(t, avail)
}

func TestRTDBReaderStore(t *testing.T) {
	srv := newTestRTDBServer(t)
	defer srv.Close()

	r := NewRTDBReader(RTDBOpts{BaseURL: srv.URL})

	store, err := r.Store(context.Background(), "storeABC")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, "storeABC", store.ID)
	assert.Equal(t, "Supermercado Central", store.Name)
	require.NotNil(t, store.Location)
	assert.Equal(t, "BR", store.Location.CountryCode)

	store, err = r.Store(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestRTDBReaderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewRTDBReader(RTDBOpts{BaseURL: srv.URL})
	_, err := r.Products(context.Background())
	assert.Error(t, err)
}

func TestRTDBReaderWithResolver(t *testing.T) {
	// End to end over HTTP: storeXYZ has no record, so only storeABC's name
	// comes back.
	srv := newTestRTDBServer(t)
	defer srv.Close()

	resolver := NewResolver(NewRTDBReader(RTDBOpts{BaseURL: srv.URL}))
	stores, err := resolver.FindStores(context.Background(), StoreSearchRequest{ProductName: "Coca-Cola 2 Liter Bottle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Supermercado Central"}, stores)
}
