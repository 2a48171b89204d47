// Package roads extracts renderable road networks for named cities
// from OpenStreetMap data.
package roads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/roadsketch/roadsketch/pkg/cache"
	"github.com/roadsketch/roadsketch/pkg/geo"
	"github.com/roadsketch/roadsketch/pkg/monitoring"
	"github.com/roadsketch/roadsketch/pkg/osm"
	"github.com/roadsketch/roadsketch/pkg/tracing"
)

const (
	// DefaultCacheSize is the number of extraction results kept in memory.
	DefaultCacheSize = 128

	// DefaultCacheTTL bounds how long a cached extraction stays fresh.
	DefaultCacheTTL = 30 * time.Minute
)

// ExtractionResult is the complete output of one extraction run.
type ExtractionResult struct {
	City   string          `json:"city"`
	Roads  []Segment       `json:"roads"`
	Bounds geo.BoundingBox `json:"bounds"`
}

// Pipeline orchestrates geocoding, road fetching and assembly.
// Concurrent requests for the same city are coalesced, and completed
// results are cached.
type Pipeline struct {
	resolver *osm.Resolver
	fetcher  *osm.RoadFetcher
	logger   *slog.Logger
	cache    *cache.TTLCache[*ExtractionResult]
	group    singleflight.Group
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
		p.resolver.SetLogger(logger)
		p.fetcher.SetLogger(logger)
	}
}

// WithCache replaces the default result cache.
func WithCache(c *cache.TTLCache[*ExtractionResult]) PipelineOption {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// NewPipeline creates a pipeline with default clients and cache.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	resultCache, err := cache.New[*ExtractionResult](DefaultCacheSize, DefaultCacheTTL)
	if err != nil {
		// Only possible with a non-positive size; the default is fixed.
		panic(fmt.Sprintf("roads: create result cache: %v", err))
	}

	p := &Pipeline{
		resolver: osm.NewResolver(),
		fetcher:  osm.NewRoadFetcher(),
		logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
		cache:    resultCache,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Resolver exposes the underlying geocoding client, mainly for tests
// that need to point it at a local server.
func (p *Pipeline) Resolver() *osm.Resolver { return p.resolver }

// Fetcher exposes the underlying Overpass client.
func (p *Pipeline) Fetcher() *osm.RoadFetcher { return p.fetcher }

// Extract resolves a city name and returns its road network with tight
// geographic bounds. The same input always yields results in the same
// order: Overpass element order is preserved through assembly.
func (p *Pipeline) Extract(ctx context.Context, city string) (*ExtractionResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		monitoring.RecordError("pipeline", "invalid_input")
		return nil, InvalidInputError()
	}

	ctx, span := tracing.StartSpan(ctx, "roads.Extract")
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrPipelineCity, city))

	key := strings.ToLower(city)
	if result, ok := p.cache.Get(key); ok {
		monitoring.RecordCacheHit(tracing.CacheTypeExtraction)
		tracing.SetAttributes(ctx, tracing.CacheAttributes(tracing.CacheTypeExtraction, true, key)...)
		p.logger.Debug("extraction cache hit", "city", city)
		return result, nil
	}
	monitoring.RecordCacheMiss(tracing.CacheTypeExtraction)

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		result, err := p.extract(ctx, city)
		if err != nil {
			return nil, err
		}
		p.cache.Set(key, result)
		monitoring.UpdateCacheSize(tracing.CacheTypeExtraction, p.cache.Len())
		return result, nil
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if shared {
		p.logger.Debug("extraction request coalesced", "city", city)
	}

	return v.(*ExtractionResult), nil
}

// extract runs the uncached pipeline stages and maps failures onto the
// user-facing error taxonomy.
func (p *Pipeline) extract(ctx context.Context, city string) (*ExtractionResult, error) {
	start := time.Now()
	strategy := "unknown"

	resolved, err := p.resolver.Resolve(ctx, city)
	if err != nil {
		monitoring.RecordExtraction(strategy, "error", time.Since(start), 0)
		return nil, p.classify(city, err)
	}
	strategy = string(resolved.SourceType)

	query := osm.BuildRoadQuery(resolved, IncludedClasses())
	resp, err := p.fetcher.FetchRoads(ctx, query)
	if err != nil {
		monitoring.RecordExtraction(strategy, "error", time.Since(start), 0)
		return nil, p.classify(city, err)
	}

	segments, err := Assemble(resp.Elements)
	if err != nil {
		monitoring.RecordExtraction(strategy, "error", time.Since(start), 0)
		return nil, p.classify(city, err)
	}

	// Bounds are computed over retained points only, so sparse outliers
	// excluded during assembly never inflate the canvas.
	bounds := geo.NewBoundingBox()
	for _, seg := range segments {
		for _, pt := range seg.Points {
			bounds.ExtendWithPoint(pt.Lat, pt.Lon)
		}
	}

	result := &ExtractionResult{
		City:   city,
		Roads:  segments,
		Bounds: *bounds,
	}

	duration := time.Since(start)
	monitoring.RecordExtraction(strategy, "success", duration, len(segments))
	tracing.SetAttributes(ctx, tracing.PipelineAttributes(city, strategy, len(segments), duration.Milliseconds())...)

	p.logger.Info("extracted city roads",
		"city", resolved.DisplayName,
		"strategy", strategy,
		"roads", len(segments),
		"duration", duration)

	return result, nil
}

// classify maps lower-level failures onto the error taxonomy. Errors
// that already carry a Kind pass through unchanged.
func (p *Pipeline) classify(city string, err error) error {
	var taxErr *Error
	if errors.As(err, &taxErr) {
		return err
	}

	switch {
	case errors.Is(err, osm.ErrNoResults):
		monitoring.RecordError("pipeline", "city_not_found")
		return CityNotFoundError(city, err)
	case errors.Is(err, ErrEmptyRoadSet):
		monitoring.RecordError("pipeline", "empty_road_set")
		return EmptyRoadSetError(city, err)
	}

	var svcErr *osm.ServiceError
	if errors.As(err, &svcErr) && svcErr.Busy() {
		monitoring.RecordError("pipeline", "service_busy")
		return ServiceBusyError(err)
	}

	monitoring.RecordError("pipeline", "fetch_failed")
	return FetchFailedError(err)
}
