package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/realprice/realprice/internal/catalog"
	"github.com/realprice/realprice/internal/lang"
	"github.com/realprice/realprice/internal/llm"
	"github.com/rs/zerolog/log"
)

// Progress step labels, reported in order at 0/25/50/75/100.
const (
	StepStarting = "Starting analysis"
	StepIdentify = "Identifying & translating objects"
	StepSearch   = "Searching related products"
	StepExtract  = "Extracting product properties"
	StepDone     = "Analysis complete"
)

// ErrRunSuperseded is returned when a newer Analyze call replaced this run
// before it finished; its results were discarded.
var ErrRunSuperseded = errors.New("analysis run superseded by a newer run")

// Progress is one progress update during an analysis run.
type Progress struct {
	Step    string
	Percent int
}

// ProgressFunc receives progress updates. It is called from the goroutine
// running Analyze.
type ProgressFunc func(Progress)

// Steps bundles the four AI-backed pipeline steps.
type Steps struct {
	Identifier llm.Identifier
	Translator llm.Translator
	Searcher   llm.ProductSearcher
	Extractor  llm.PropertyExtractor
}

// StoreFinder resolves a product name to store names.
type StoreFinder interface {
	FindStores(ctx context.Context, req catalog.StoreSearchRequest) ([]string, error)
}

// RunRecorder persists completed analysis runs.
type RunRecorder interface {
	SaveRun(imageHash string, result json.RawMessage) error
}

// Pipeline orchestrates the analysis stages and per-product store lookups.
// All dependencies are injected; the zero value is not usable.
type Pipeline struct {
	steps    Steps
	stores   StoreFinder
	targets  []lang.Code
	recorder RunRecorder

	mu       sync.Mutex
	runToken uint64
	result   Result
	location *catalog.Coordinates
}

// NewPipeline creates a pipeline over the given steps and store finder,
// translating into the given target languages.
func NewPipeline(steps Steps, stores StoreFinder, targets []lang.Code) *Pipeline {
	return &Pipeline{
		steps:   steps,
		stores:  stores,
		targets: targets,
		result:  Result{StoreSearch: make(map[string]StoreSearchState)},
	}
}

// SetRecorder enables run history persistence.
func (p *Pipeline) SetRecorder(r RunRecorder) {
	p.recorder = r
}

// SetLocation records the user's coordinates, passed through to store
// lookups for future proximity ranking.
func (p *Pipeline) SetLocation(lat, lng float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = &catalog.Coordinates{Lat: lat, Lng: lng}
}

// begin starts a new run: the aggregate result is replaced and the run
// token advanced, invalidating any run still in flight.
func (p *Pipeline) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runToken++
	p.result = Result{StoreSearch: make(map[string]StoreSearchState)}
	return p.runToken
}

// commit applies a result mutation if the run is still current. Returns
// false when the run has been superseded.
func (p *Pipeline) commit(token uint64, fn func(*Result)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.runToken {
		return false
	}
	fn(&p.result)
	return true
}

func (p *Pipeline) current(token uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return token == p.runToken
}

// Snapshot returns a copy of the current aggregate result.
func (p *Pipeline) Snapshot() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pipeline) snapshotLocked() Result {
	snap := p.result
	snap.StoreSearch = make(map[string]StoreSearchState, len(p.result.StoreSearch))
	for k, v := range p.result.StoreSearch {
		snap.StoreSearch[k] = v
	}
	return snap
}

// Analyze runs the full pipeline on a base64 image data URI. Stages run
// strictly sequentially; soft-empty stage results produce empty-shaped
// result fields and the pipeline continues, while a stage error aborts the
// remaining stages and surfaces here with partial results retained.
// Starting a new run supersedes any run still in flight: the old run's
// remaining writes and progress callbacks are discarded and it returns
// ErrRunSuperseded.
func (p *Pipeline) Analyze(ctx context.Context, imageDataURI string, onProgress ProgressFunc) (Result, error) {
	imageData, mimeType, err := ParseImageDataURI(imageDataURI)
	if err != nil {
		return Result{}, err
	}

	token := p.begin()
	report := func(step string, pct int) {
		if onProgress != nil && p.current(token) {
			onProgress(Progress{Step: step, Percent: pct})
		}
	}

	report(StepStarting, 0)
	report(StepIdentify, 25)

	objects, err := p.steps.Identifier.IdentifyObjects(ctx, imageData, mimeType)
	if err != nil {
		return p.Snapshot(), fmt.Errorf("identifying objects: %w", err)
	}

	if len(objects) == 0 {
		if !p.commit(token, func(r *Result) { r.Objects = []IdentifiedObject{} }) {
			return Result{}, ErrRunSuperseded
		}
		log.Info().Msg("analysis complete: no objects identified")
		report(StepDone, 100)
		p.record(token, imageData, mimeType)
		return p.Snapshot(), nil
	}

	translated, err := p.steps.Translator.TranslateObjects(ctx, objects, p.targets)
	if err != nil {
		return p.Snapshot(), fmt.Errorf("translating objects: %w", err)
	}
	aligned := alignTranslations(objects, translated, p.targets)
	if !p.commit(token, func(r *Result) { r.Objects = aligned }) {
		return Result{}, ErrRunSuperseded
	}
	report(StepSearch, 50)

	searchResults, err := p.steps.Searcher.SearchRelatedProducts(ctx, objects)
	if err != nil {
		return p.Snapshot(), fmt.Errorf("searching related products: %w", err)
	}
	if searchResults == nil {
		searchResults = []llm.ProductSearchResult{}
	}
	if !p.commit(token, func(r *Result) { r.RelatedProducts = searchResults }) {
		return Result{}, ErrRunSuperseded
	}
	report(StepExtract, 75)

	products := uniqueProducts(searchResults)
	if len(products) == 0 {
		log.Info().Msg("no products found; property extraction skipped")
		report(StepDone, 100)
		p.record(token, imageData, mimeType)
		return p.Snapshot(), nil
	}

	props, err := p.steps.Extractor.ExtractProductProperties(ctx, products)
	if err != nil {
		return p.Snapshot(), fmt.Errorf("extracting product properties: %w", err)
	}
	if props == nil {
		props = []llm.ProductProperties{}
	}
	if !p.commit(token, func(r *Result) { r.ProductProperties = props }) {
		return Result{}, ErrRunSuperseded
	}

	log.Info().
		Int("objects", len(aligned)).
		Int("products", len(products)).
		Msg("analysis complete")
	report(StepDone, 100)
	p.record(token, imageData, mimeType)

	return p.Snapshot(), nil
}

// FindStores looks up stores for one discovered product, updating that
// product's entry in the StoreSearch map. Lookups for different products
// are independent and safe to run concurrently. A catalog failure is
// contained to the product's error state and also returned.
func (p *Pipeline) FindStores(ctx context.Context, productName string) ([]string, error) {
	p.mu.Lock()
	loc := p.location
	p.result.StoreSearch[productName] = StoreSearchState{Loading: true}
	p.mu.Unlock()

	req := catalog.StoreSearchRequest{ProductName: productName}
	if loc != nil {
		req.Latitude = &loc.Lat
		req.Longitude = &loc.Lng
	}

	stores, err := p.stores.FindStores(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.result.StoreSearch[productName] = StoreSearchState{Err: err.Error()}
		return nil, err
	}
	if stores == nil {
		stores = []string{}
	}
	p.result.StoreSearch[productName] = StoreSearchState{Stores: stores}
	return stores, nil
}

// record persists the finished run if a recorder is configured and the run
// is still current.
func (p *Pipeline) record(token uint64, imageData []byte, mimeType string) {
	if p.recorder == nil {
		return
	}

	p.mu.Lock()
	if token != p.runToken {
		p.mu.Unlock()
		return
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	b, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal run result")
		return
	}
	if err := p.recorder.SaveRun(llm.HashImage(imageData, mimeType), b); err != nil {
		log.Warn().Err(err).Msg("failed to save run history")
	}
}
