// Command seed-catalog loads a JSON catalog export into the local sqlite
// catalog. The input mirrors the Realtime Database layout:
//
//	{
//	  "products": {"coke2l": {"canonicalName": "Coca-Cola 2 Liter Bottle"}},
//	  "productAvailability": {"coke2l": {"storeABC": {"currentPrice": 7.99, "currency": "BRL"}}},
//	  "stores": {"storeABC": {"name": "Supermercado Central"}}
//	}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/realprice/realprice/internal/catalog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type catalogExport struct {
	Products     map[string]catalog.Product                 `json:"products"`
	Availability map[string]map[string]catalog.Availability `json:"productAvailability"`
	Stores       map[string]catalog.Store                   `json:"stores"`
}

func main() {
	dbPath := flag.String("db", "catalog.db", "Catalog database path")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-db <path>] <export.json>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read export file")
	}

	var export catalogExport
	if err := json.Unmarshal(data, &export); err != nil {
		log.Fatal().Err(err).Msg("failed to parse export file")
	}

	cat, err := catalog.NewSQLiteCatalog(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open catalog")
	}
	defer cat.Close()

	for id, p := range export.Products {
		p.ID = id
		if err := cat.PutProduct(p); err != nil {
			log.Fatal().Err(err).Str("productId", id).Msg("failed to write product")
		}
	}
	for productID, stores := range export.Availability {
		for storeID, a := range stores {
			if err := cat.PutAvailability(productID, storeID, a); err != nil {
				log.Fatal().Err(err).Str("productId", productID).Str("storeId", storeID).Msg("failed to write availability")
			}
		}
	}
	for id, s := range export.Stores {
		s.ID = id
		if err := cat.PutStore(s); err != nil {
			log.Fatal().Err(err).Str("storeId", id).Msg("failed to write store")
		}
	}

	log.Info().
		Str("db", *dbPath).
		Int("products", len(export.Products)).
		Int("stores", len(export.Stores)).
		Msg("catalog seeded")
}
