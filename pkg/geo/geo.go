// Package geo provides basic geographic types shared by the extraction
// and rendering pipelines.
package geo

import (
	"fmt"
	"math"
)

// Point is a single WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is a rectangular lat/lon envelope. A valid box satisfies
// MinLat <= MaxLat and MinLon <= MaxLon.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// NewBoundingBox returns an empty bounding box. The zero envelope uses
// inverted infinities so the first ExtendWithPoint call snaps it to that
// point.
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		MinLat: math.Inf(1),
		MaxLat: math.Inf(-1),
		MinLon: math.Inf(1),
		MaxLon: math.Inf(-1),
	}
}

// ExtendWithPoint grows the box to include the given coordinate.
func (b *BoundingBox) ExtendWithPoint(lat, lon float64) {
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
	if lon < b.MinLon {
		b.MinLon = lon
	}
	if lon > b.MaxLon {
		b.MaxLon = lon
	}
}

// LatRange returns the latitude span of the box.
func (b *BoundingBox) LatRange() float64 {
	return b.MaxLat - b.MinLat
}

// LonRange returns the longitude span of the box.
func (b *BoundingBox) LonRange() float64 {
	return b.MaxLon - b.MinLon
}

// Validate checks that the box is a finite, properly ordered envelope.
func (b *BoundingBox) Validate() error {
	for _, v := range []float64{b.MinLat, b.MaxLat, b.MinLon, b.MaxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounding box has non-finite coordinate: %f", v)
		}
	}
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("bounding box min latitude %f exceeds max latitude %f", b.MinLat, b.MaxLat)
	}
	if b.MinLon > b.MaxLon {
		return fmt.Errorf("bounding box min longitude %f exceeds max longitude %f", b.MinLon, b.MaxLon)
	}
	return nil
}

// ValidateCoords validates latitude and longitude values.
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", lon)
	}
	return nil
}
