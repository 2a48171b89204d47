// Package render turns extracted road networks into canvas-space paths
// and SVG documents.
package render

import (
	"fmt"
	"strings"

	"github.com/roadsketch/roadsketch/pkg/geo"
	"github.com/roadsketch/roadsketch/pkg/roads"
)

const (
	// CanvasSize is the square output canvas edge in pixels.
	CanvasSize = 800

	// Padding is the margin kept clear on every canvas edge.
	Padding = 20

	defaultStrokeWidth = 1.0
	defaultOpacity     = 0.7
)

// strokeWidths maps highway classes to stroke widths in pixels.
var strokeWidths = map[string]float64{
	"motorway":       3.5,
	"trunk":          3,
	"primary":        2.5,
	"secondary":      2,
	"tertiary":       1.5,
	"unclassified":   1,
	"residential":    0.8,
	"motorway_link":  2,
	"trunk_link":     1.8,
	"primary_link":   1.5,
	"secondary_link": 1.2,
	"tertiary_link":  1.2,
	"service":        0.5,
	"living_street":  0.7,
	"pedestrian":     0.6,
}

// opacities maps highway classes to path opacity.
var opacities = map[string]float64{
	"motorway":       1,
	"trunk":          1,
	"primary":        0.95,
	"secondary":      0.9,
	"tertiary":       0.85,
	"unclassified":   0.75,
	"residential":    0.65,
	"motorway_link":  0.9,
	"trunk_link":     0.9,
	"primary_link":   0.85,
	"secondary_link": 0.8,
	"tertiary_link":  0.8,
	"service":        0.5,
	"living_street":  0.6,
	"pedestrian":     0.55,
}

// ProjectedPath is one road segment mapped onto the canvas.
type ProjectedPath struct {
	Class       string  `json:"highway"`
	Path        string  `json:"d"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// Project maps geographic segments onto the canvas using an equirectangular
// projection that preserves aspect ratio: a single scale serves both axes,
// and the drawing is centered inside the padded area. Latitude is flipped
// since canvas y grows downward.
//
// Degenerate bounds (a single point or a perfectly straight axis-aligned
// network) yield no paths rather than a division by zero.
func Project(segments []roads.Segment, bounds geo.BoundingBox) []ProjectedPath {
	latRange := bounds.LatRange()
	lonRange := bounds.LonRange()
	if latRange == 0 || lonRange == 0 {
		return nil
	}

	drawable := float64(CanvasSize - 2*Padding)

	scaleX := drawable / lonRange
	scaleY := drawable / latRange
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	offsetX := Padding + (drawable-lonRange*scale)/2
	offsetY := Padding + (drawable-latRange*scale)/2

	toX := func(lon float64) float64 { return offsetX + (lon-bounds.MinLon)*scale }
	toY := func(lat float64) float64 { return offsetY + (bounds.MaxLat-lat)*scale }

	paths := make([]ProjectedPath, 0, len(segments))
	for _, seg := range segments {
		pts := make([]string, len(seg.Points))
		for i, pt := range seg.Points {
			pts[i] = fmt.Sprintf("%.2f,%.2f", toX(pt.Lon), toY(pt.Lat))
		}

		paths = append(paths, ProjectedPath{
			Class:       seg.Class,
			Path:        "M" + strings.Join(pts, "L"),
			StrokeWidth: strokeWidth(seg.Class),
			Opacity:     opacity(seg.Class),
		})
	}

	return paths
}

func strokeWidth(class string) float64 {
	if w, ok := strokeWidths[class]; ok {
		return w
	}
	return defaultStrokeWidth
}

func opacity(class string) float64 {
	if o, ok := opacities[class]; ok {
		return o
	}
	return defaultOpacity
}
