package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/realprice/realprice/internal/analysis"
	"github.com/realprice/realprice/internal/catalog"
	"github.com/realprice/realprice/internal/config"
	"github.com/realprice/realprice/internal/llm"
	"github.com/realprice/realprice/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	lookup := flag.Bool("lookup", false, "Look up stores for each discovered product")
	lat := flag.Float64("lat", 0, "User latitude (with -lng)")
	lng := flag.Float64("lng", 0, "User longitude (with -lat)")
	rawJSON := flag.Bool("json", false, "Output the raw result JSON only")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image-path>\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if *rawJSON {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	imagePath := flag.Arg(0)
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", imagePath).Msg("failed to read image")
	}
	mimeType := mimeTypeForPath(imagePath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	reader, cleanup, err := newCatalogReader(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open catalog")
	}
	defer cleanup()

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gemini client")
	}

	var identifier llm.Identifier = gemini
	if cfg.Provider == config.ProviderOpenAI {
		identifier = llm.NewOpenAIIdentifier(cfg.OpenAIAPIKey)
		log.Info().Msg("using openai for object identification")
	}
	identifier = llm.NewCachedIdentifier(identifier, store)

	pipeline := analysis.NewPipeline(analysis.Steps{
		Identifier: identifier,
		Translator: gemini,
		Searcher:   gemini,
		Extractor:  gemini,
	}, catalog.NewResolver(reader), cfg.TargetLanguages)
	pipeline.SetRecorder(store)
	if *lat != 0 || *lng != 0 {
		pipeline.SetLocation(*lat, *lng)
	}

	onProgress := func(p analysis.Progress) {
		if !*rawJSON {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", p.Percent, p.Step)
		}
	}

	result, err := pipeline.Analyze(ctx, analysis.FormatImageDataURI(imageData, mimeType), onProgress)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	if *lookup {
		findAllStores(ctx, pipeline, result)
		result = pipeline.Snapshot()
	}

	if *rawJSON {
		printJSON(result)
		return
	}
	printResult(result)
}

func newCatalogReader(cfg *config.Config) (catalog.Reader, func(), error) {
	switch cfg.CatalogBackend {
	case config.CatalogRTDB:
		reader := catalog.NewRTDBReader(catalog.RTDBOpts{
			BaseURL:   cfg.RTDBBaseURL,
			AuthToken: cfg.RTDBAuthToken,
		})
		return reader, func() {}, nil
	default:
		cat, err := catalog.NewSQLiteCatalog(cfg.CatalogDBPath)
		if err != nil {
			return nil, nil, err
		}
		return cat, func() { cat.Close() }, nil
	}
}

// findAllStores runs a store lookup for every unique related product.
// Lookup failures are contained per product; the rest still resolve.
func findAllStores(ctx context.Context, pipeline *analysis.Pipeline, result analysis.Result) {
	seen := make(map[string]bool)
	g, gctx := errgroup.WithContext(ctx)
	for _, sr := range result.RelatedProducts {
		for _, product := range sr.RelatedProducts {
			if seen[product] {
				continue
			}
			seen[product] = true
			g.Go(func() error {
				if _, err := pipeline.FindStores(gctx, product); err != nil {
					log.Warn().Err(err).Str("product", product).Msg("store lookup failed")
				}
				return nil
			})
		}
	}
	g.Wait()
}

func printJSON(result analysis.Result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
}

func printResult(result analysis.Result) {
	if len(result.Objects) == 0 {
		fmt.Println("No objects identified.")
		return
	}

	fmt.Println("Objects:")
	for _, obj := range result.Objects {
		fmt.Printf("  %s\n", obj.Original)
		for code, translation := range obj.Translations {
			if translation != "" {
				fmt.Printf("    %-6s %s\n", code, translation)
			}
		}
	}

	if len(result.RelatedProducts) > 0 {
		fmt.Println("\nRelated products:")
		for _, sr := range result.RelatedProducts {
			fmt.Printf("  %s: %s\n", sr.ObjectName, strings.Join(sr.RelatedProducts, ", "))
		}
	}

	if len(result.ProductProperties) > 0 {
		fmt.Println("\nProperties:")
		for _, pp := range result.ProductProperties {
			fmt.Printf("  %s: %s\n", pp.Product, strings.Join(pp.Properties, ", "))
		}
	}

	if len(result.StoreSearch) > 0 {
		fmt.Println("\nStores:")
		for product, state := range result.StoreSearch {
			switch {
			case state.Err != "":
				fmt.Printf("  %s: lookup failed (%s)\n", product, state.Err)
			case len(state.Stores) == 0:
				fmt.Printf("  %s: not found in any store\n", product)
			default:
				fmt.Printf("  %s: %s\n", product, strings.Join(state.Stores, ", "))
			}
		}
	}
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
