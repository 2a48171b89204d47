package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roadsketch/roadsketch/pkg/geo"
	"github.com/roadsketch/roadsketch/pkg/tracing"
)

// SourceType identifies how a city was resolved: as an administrative
// relation (preferred, enables area queries) or as a plain point.
type SourceType string

const (
	SourceRelation SourceType = "relation"
	SourcePoint    SourceType = "point"
)

// maxCandidates is the number of geocoding candidates requested per search.
const maxCandidates = 10

// preferredPlaceTypes are the Nominatim place sub-types that identify an
// administrative settlement boundary. A relation with one of these types
// wins over any other candidate.
var preferredPlaceTypes = map[string]bool{
	"city":           true,
	"town":           true,
	"municipality":   true,
	"administrative": true,
	"village":        true,
}

// ResolvedCity is the outcome of geocoding a city name. It lives for one
// request: created by the Resolver, consumed by the query builder.
type ResolvedCity struct {
	SourceType  SourceType
	SourceID    int64
	DisplayName string
	BBox        geo.BoundingBox
}

// Resolver turns a free-text city name into a ResolvedCity using the
// Nominatim search API.
type Resolver struct {
	baseURL string
	logger  *slog.Logger
}

// NewResolver creates a Resolver against the public Nominatim endpoint.
func NewResolver() *Resolver {
	return &Resolver{
		baseURL: NominatimBaseURL,
		logger:  slog.Default(),
	}
}

// SetBaseURL overrides the geocoding endpoint, used in tests.
func (r *Resolver) SetBaseURL(u string) {
	r.baseURL = u
}

// SetLogger sets the logger for the resolver.
func (r *Resolver) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Resolve geocodes a city name. The name must already be trimmed and
// non-empty. It returns ErrNoResults (wrapped) when the service has no
// candidates, and a *ServiceError for transport-level failures.
func (r *Resolver) Resolve(ctx context.Context, city string) (*ResolvedCity, error) {
	ctx, span := tracing.StartSpan(ctx, "osm.resolve_city")
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrPipelineCity, city))

	reqURL, err := url.Parse(r.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse nominatim URL: %w", err)
	}

	q := reqURL.Query()
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(maxCandidates))
	q.Set("addressdetails", "0")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create geocoding request: %w", err)
	}

	resp, err := MonitoredDoRequest(ctx, req, "search")
	if err != nil {
		return nil, &ServiceError{Service: "nominatim", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewServiceError("nominatim", resp.StatusCode, "geocoding request failed")
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoResults, city)
	}

	chosen := selectCandidate(places)

	bbox, err := parseBoundingBox(chosen.BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("parse bounding box for %q: %w", chosen.DisplayName, err)
	}

	sourceType := SourcePoint
	if chosen.OSMType == "relation" {
		sourceType = SourceRelation
	}

	r.logger.Debug("resolved city",
		"query", city,
		"display_name", chosen.DisplayName,
		"osm_type", chosen.OSMType,
		"osm_id", chosen.OSMID,
		"place_type", chosen.Type)

	return &ResolvedCity{
		SourceType:  sourceType,
		SourceID:    chosen.OSMID,
		DisplayName: chosen.DisplayName,
		BBox:        *bbox,
	}, nil
}

// selectCandidate picks the best geocoding candidate. Relations tagged with
// a settlement place type win, then any relation, then whatever came first.
func selectCandidate(places []Place) Place {
	for _, p := range places {
		if p.OSMType == "relation" && preferredPlaceTypes[p.Type] {
			return p
		}
	}
	for _, p := range places {
		if p.OSMType == "relation" {
			return p
		}
	}
	return places[0]
}

// parseBoundingBox parses Nominatim's four-string bounding box
// (south, north, west, east) into a BoundingBox.
func parseBoundingBox(raw []string) (*geo.BoundingBox, error) {
	if len(raw) != 4 {
		return nil, fmt.Errorf("expected 4 bounding box values, got %d", len(raw))
	}

	vals := make([]float64, 4)
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bounding box value %q: %w", s, err)
		}
		vals[i] = v
	}

	if err := geo.ValidateCoords(vals[0], vals[2]); err != nil {
		return nil, err
	}
	if err := geo.ValidateCoords(vals[1], vals[3]); err != nil {
		return nil, err
	}

	bbox := &geo.BoundingBox{
		MinLat: vals[0],
		MaxLat: vals[1],
		MinLon: vals[2],
		MaxLon: vals[3],
	}
	if err := bbox.Validate(); err != nil {
		return nil, err
	}
	return bbox, nil
}
