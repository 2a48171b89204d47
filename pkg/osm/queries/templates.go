// Package queries provides utilities for building Overpass API queries.
package queries

import (
	"fmt"
	"strings"

	"github.com/roadsketch/roadsketch/pkg/geo"
)

// OverpassBuilder provides a fluent interface for building Overpass API
// queries. All queries request JSON output; the server-side timeout budget
// is set at construction.
type OverpassBuilder struct {
	buf        strings.Builder
	hasElement bool
	closed     bool
}

// NewOverpassBuilder creates a new Overpass query builder with the given
// server-side timeout budget in seconds.
func NewOverpassBuilder(timeoutSeconds int) *OverpassBuilder {
	b := &OverpassBuilder{}
	fmt.Fprintf(&b.buf, "[out:json][timeout:%d];", timeoutSeconds)
	return b
}

// WithSearchArea declares a named search area derived from a pre-indexed
// Overpass area id. Must be called before any element filters that
// reference the area.
func (b *OverpassBuilder) WithSearchArea(areaID int64) *OverpassBuilder {
	fmt.Fprintf(&b.buf, "area(%d)->.searchArea;", areaID)
	return b
}

// WithWayRegexInArea adds a way filter matching a tag value against a
// whole-string regex alternation, scoped to the declared search area.
func (b *OverpassBuilder) WithWayRegexInArea(key, pattern string) *OverpassBuilder {
	b.begin()
	fmt.Fprintf(&b.buf, "way[%q~\"^(%s)$\"](area.searchArea);", key, pattern)
	return b
}

// WithWayRegexInBbox adds a way filter matching a tag value against a
// whole-string regex alternation, scoped to a bounding box.
func (b *OverpassBuilder) WithWayRegexInBbox(key, pattern string, bbox geo.BoundingBox) *OverpassBuilder {
	b.begin()
	fmt.Fprintf(&b.buf, "way[%q~\"^(%s)$\"](%f,%f,%f,%f);",
		key, pattern, bbox.MinLat, bbox.MinLon, bbox.MaxLat, bbox.MaxLon)
	return b
}

// begin opens the element group on first use.
func (b *OverpassBuilder) begin() {
	if !b.hasElement {
		b.buf.WriteString("(")
		b.hasElement = true
	}
}

// End closes the element group and adds the body output statement.
func (b *OverpassBuilder) End() *OverpassBuilder {
	if b.hasElement && !b.closed {
		b.buf.WriteString(");out body;")
		b.closed = true
	}
	return b
}

// WithNodeExpansion appends a recurse-down step so every node referenced by
// a matched way is included in the response, making coordinates resolvable
// without a second round trip.
func (b *OverpassBuilder) WithNodeExpansion() *OverpassBuilder {
	b.End()
	b.buf.WriteString(">;out skel qt;")
	return b
}

// Build returns the complete Overpass query string.
func (b *OverpassBuilder) Build() string {
	return b.buf.String()
}
