// Command find-stores resolves a product name to the stores carrying it,
// against the configured catalog backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/realprice/realprice/internal/catalog"
	"github.com/realprice/realprice/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	product := flag.String("product", "", "Product name to look up")
	lat := flag.Float64("lat", 0, "User latitude (with -lng)")
	lng := flag.Float64("lng", 0, "User longitude (with -lat)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *product == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -product <name> [-lat <lat> -lng <lng>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  REALPRICE_CATALOG    - rtdb or sqlite (default sqlite)\n")
		fmt.Fprintf(os.Stderr, "  REALPRICE_RTDB_URL   - Realtime Database root URL (rtdb)\n")
		fmt.Fprintf(os.Stderr, "  REALPRICE_CATALOG_DB - Catalog database path (sqlite)\n")
		os.Exit(1)
	}

	config.LoadEnvFile()

	var reader catalog.Reader
	if config.CatalogBackend(os.Getenv("REALPRICE_CATALOG")) == config.CatalogRTDB {
		baseURL := os.Getenv("REALPRICE_RTDB_URL")
		if baseURL == "" {
			log.Fatal().Msg("REALPRICE_RTDB_URL is not set")
		}
		reader = catalog.NewRTDBReader(catalog.RTDBOpts{
			BaseURL:   baseURL,
			AuthToken: os.Getenv("REALPRICE_RTDB_AUTH"),
		})
	} else {
		dbPath := os.Getenv("REALPRICE_CATALOG_DB")
		if dbPath == "" {
			dbPath = "catalog.db"
		}
		cat, err := catalog.NewSQLiteCatalog(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open catalog")
		}
		defer cat.Close()
		reader = cat
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := catalog.StoreSearchRequest{ProductName: *product}
	if *lat != 0 || *lng != 0 {
		req.Latitude = lat
		req.Longitude = lng
	}

	stores, err := catalog.NewResolver(reader).FindStores(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(stores) == 0 {
		fmt.Printf("%q not found in any store\n", *product)
		return
	}
	for _, store := range stores {
		fmt.Println(store)
	}
}
