package roads

import (
	"github.com/roadsketch/roadsketch/pkg/geo"
	"github.com/roadsketch/roadsketch/pkg/osm"
)

// Segment is one road polyline with its classification and render weight.
// Field tags match the wire contract handed to the rendering layer.
type Segment struct {
	Class  string      `json:"highway"`
	Weight float64     `json:"weight"`
	Points []geo.Point `json:"coords"`
}

// Assemble reconstructs ordered road polylines from a flat Overpass
// element list. Node records are indexed first; each way's node-id
// sequence is then resolved against that index. Node ids missing from the
// response (outside the query's expansion) and nodes carrying out-of-range
// coordinates are dropped rather than failing the way, and ways left with
// fewer than two points are discarded since they cannot form a line.
// Output order follows source order.
//
// Assemble returns ErrEmptyRoadSet when nothing survives filtering.
func Assemble(elements []osm.OverpassElement) ([]Segment, error) {
	nodes := make(map[int64]geo.Point)
	for _, el := range elements {
		if el.Type == "node" && geo.ValidateCoords(el.Lat, el.Lon) == nil {
			nodes[el.ID] = geo.Point{Lat: el.Lat, Lon: el.Lon}
		}
	}

	var segments []Segment
	for _, el := range elements {
		if el.Type != "way" {
			continue
		}

		class := el.Tags["highway"]
		if class == "" {
			class = defaultClass
		}

		info, ok := classTable[class]
		if !ok || !info.Include {
			continue
		}

		points := make([]geo.Point, 0, len(el.Nodes))
		for _, id := range el.Nodes {
			if p, found := nodes[id]; found {
				points = append(points, p)
			}
		}
		if len(points) < 2 {
			continue
		}

		segments = append(segments, Segment{
			Class:  class,
			Weight: info.Weight,
			Points: points,
		})
	}

	if len(segments) == 0 {
		return nil, ErrEmptyRoadSet
	}
	return segments, nil
}
