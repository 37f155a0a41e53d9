package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// RTDBOpts configures an RTDBReader.
type RTDBOpts struct {
	// BaseURL is the Realtime Database root, e.g.
	// "https://my-project-default-rtdb.firebaseio.com".
	BaseURL string
	// AuthToken is an optional database secret or ID token, sent as the
	// "auth" query parameter.
	AuthToken string
}

// RTDBReader reads the catalog from a Firebase Realtime Database over its
// REST API. The database holds three top-level nodes: /products,
// /productAvailability/{productId} and /stores/{storeId}.
type RTDBReader struct {
	httpClient *resty.Client
}

// NewRTDBReader creates a catalog reader for the given database.
func NewRTDBReader(opts RTDBOpts) *RTDBReader {
	c := resty.New().
		SetDebug(false).
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")
	if opts.AuthToken != "" {
		c.SetQueryParam("auth", opts.AuthToken)
	}
	return &RTDBReader{httpClient: c}
}

func (r *RTDBReader) get(ctx context.Context, path string, out any) error {
	res, err := handleError(r.httpClient.
		NewRequest().
		SetContext(ctx).
		Get(path))
	if err != nil {
		return err
	}

	// The RTDB REST API returns the literal "null" for a missing node.
	body := bytes.TrimSpace(res.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Products implements Reader.
func (r *RTDBReader) Products(ctx context.Context) (map[string]Product, error) {
	var raw map[string]Product
	if err := r.get(ctx, "/products.json", &raw); err != nil {
		return nil, err
	}
	products := make(map[string]Product, len(raw))
	for id, p := range raw {
		p.ID = id
		products[id] = p
	}
	return products, nil
}

// Availability implements Reader.
func (r *RTDBReader) Availability(ctx context.Context, productID string) (map[string]Availability, error) {
	var raw map[string]Availability
	if err := r.get(ctx, fmt.Sprintf("/productAvailability/%s.json", productID), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Store implements Reader. Returns nil, nil when the store node is missing.
func (r *RTDBReader) Store(ctx context.Context, storeID string) (*Store, error) {
	var store *Store
	if err := r.get(ctx, fmt.Sprintf("/stores/%s.json", storeID), &store); err != nil {
		return nil, err
	}
	if store != nil {
		store.ID = storeID
	}
	return store, nil
}

// handleError is a generic error handler for failing responses (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return res, nil
}
