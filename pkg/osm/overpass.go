package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roadsketch/roadsketch/pkg/osm/queries"
	"github.com/roadsketch/roadsketch/pkg/tracing"
)

const (
	// areaIDOffset maps an administrative relation id to its pre-indexed
	// Overpass search area id.
	areaIDOffset = 3_600_000_000

	// queryTimeoutSeconds is the server-side budget requested with every
	// road query.
	queryTimeoutSeconds = 90
)

// BuildRoadQuery builds the Overpass QL query for a resolved city. Cities
// resolved to an administrative relation use the pre-indexed search area;
// anything else falls back to the resolver's raw bounding box.
// highwayClasses is joined into a whole-string alternation filter.
func BuildRoadQuery(city *ResolvedCity, highwayClasses []string) string {
	pattern := strings.Join(highwayClasses, "|")

	b := queries.NewOverpassBuilder(queryTimeoutSeconds)
	if city.SourceType == SourceRelation {
		b.WithSearchArea(areaIDOffset + city.SourceID).
			WithWayRegexInArea("highway", pattern)
	} else {
		b.WithWayRegexInBbox("highway", pattern, city.BBox)
	}
	return b.WithNodeExpansion().Build()
}

// RoadFetcher executes Overpass road queries.
type RoadFetcher struct {
	baseURL string
	logger  *slog.Logger
}

// NewRoadFetcher creates a RoadFetcher against the public Overpass endpoint.
func NewRoadFetcher() *RoadFetcher {
	return &RoadFetcher{
		baseURL: OverpassBaseURL,
		logger:  slog.Default(),
	}
}

// SetBaseURL overrides the road-data endpoint, used in tests.
func (f *RoadFetcher) SetBaseURL(u string) {
	f.baseURL = u
}

// SetLogger sets the logger for the fetcher.
func (f *RoadFetcher) SetLogger(logger *slog.Logger) {
	f.logger = logger
}

// FetchRoads POSTs an Overpass QL query and decodes the element list.
// Transport-level failures are reported as *ServiceError so callers can
// distinguish rate limiting from other failures.
func (f *RoadFetcher) FetchRoads(ctx context.Context, query string) (*OverpassResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "osm.fetch_roads")
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrServiceName, tracing.ServiceOverpass))

	body := strings.NewReader("data=" + url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("create road-data request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := MonitoredDoRequest(ctx, req, "roads")
	if err != nil {
		return nil, &ServiceError{Service: "overpass", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewServiceError("overpass", resp.StatusCode, "road-data request failed")
	}

	var out OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode road-data response: %w", err)
	}

	f.logger.Debug("fetched road data", "elements", len(out.Elements))

	return &out, nil
}
