package roads

import (
	"errors"
	"testing"

	"github.com/roadsketch/roadsketch/pkg/osm"
)

func node(id int64, lat, lon float64) osm.OverpassElement {
	return osm.OverpassElement{Type: "node", ID: id, Lat: lat, Lon: lon}
}

func way(id int64, class string, nodes ...int64) osm.OverpassElement {
	el := osm.OverpassElement{Type: "way", ID: id, Nodes: nodes}
	if class != "" {
		el.Tags = map[string]string{"highway": class}
	}
	return el
}

func TestAssemble(t *testing.T) {
	elements := []osm.OverpassElement{
		way(100, "primary", 1, 2, 3),
		way(101, "residential", 2, 3),
		node(1, 48.85, 2.35),
		node(2, 48.86, 2.36),
		node(3, 48.87, 2.37),
	}

	segments, err := Assemble(elements)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}

	// Output preserves source order.
	if segments[0].Class != "primary" || segments[1].Class != "residential" {
		t.Errorf("unexpected classes: %s, %s", segments[0].Class, segments[1].Class)
	}
	if len(segments[0].Points) != 3 {
		t.Errorf("primary way has %d points, want 3", len(segments[0].Points))
	}
	if segments[0].Weight != 3 {
		t.Errorf("primary weight = %v, want 3", segments[0].Weight)
	}
	if segments[0].Points[0].Lat != 48.85 {
		t.Errorf("points out of order: %+v", segments[0].Points)
	}
}

func TestAssembleDropsUnresolvedNodes(t *testing.T) {
	elements := []osm.OverpassElement{
		way(100, "primary", 1, 99, 2), // node 99 is not in the response
		node(1, 48.85, 2.35),
		node(2, 48.86, 2.36),
	}

	segments, err := Assemble(elements)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(segments[0].Points) != 2 {
		t.Errorf("got %d points, want 2 after dropping unresolved id", len(segments[0].Points))
	}
}

func TestAssembleDropsOutOfRangeNodes(t *testing.T) {
	elements := []osm.OverpassElement{
		way(100, "primary", 1, 2, 3),
		node(1, 48.85, 2.35),
		node(2, 99.0, 2.36), // latitude outside WGS84 range
		node(3, 48.87, 2.37),
	}

	segments, err := Assemble(elements)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(segments[0].Points) != 2 {
		t.Errorf("got %d points, want 2 after dropping bad coordinate", len(segments[0].Points))
	}
	for _, p := range segments[0].Points {
		if p.Lat > 90 {
			t.Errorf("out-of-range point survived: %+v", p)
		}
	}
}

func TestAssembleDropsDegenerateWays(t *testing.T) {
	elements := []osm.OverpassElement{
		way(100, "primary", 1, 99), // only one node resolves
		way(101, "primary", 1, 2),
		node(1, 48.85, 2.35),
		node(2, 48.86, 2.36),
	}

	segments, err := Assemble(elements)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(segments) != 1 || segments[0].Points[1].Lon != 2.36 {
		t.Errorf("expected only the two-point way to survive, got %d segments", len(segments))
	}
}

func TestAssembleExcludesNonRoadClasses(t *testing.T) {
	elements := []osm.OverpassElement{
		way(100, "footway", 1, 2),
		way(101, "cycleway", 1, 2),
		node(1, 48.85, 2.35),
		node(2, 48.86, 2.36),
	}

	_, err := Assemble(elements)
	if !errors.Is(err, ErrEmptyRoadSet) {
		t.Errorf("expected ErrEmptyRoadSet when only excluded classes remain, got %v", err)
	}
}

func TestAssembleDefaultsMissingHighwayTag(t *testing.T) {
	elements := []osm.OverpassElement{
		way(100, "", 1, 2),
		node(1, 48.85, 2.35),
		node(2, 48.86, 2.36),
	}

	segments, err := Assemble(elements)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if segments[0].Class != "unclassified" {
		t.Errorf("untagged way class = %s, want unclassified", segments[0].Class)
	}
	if segments[0].Weight != 1.5 {
		t.Errorf("untagged way weight = %v, want 1.5", segments[0].Weight)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	if _, err := Assemble(nil); !errors.Is(err, ErrEmptyRoadSet) {
		t.Errorf("expected ErrEmptyRoadSet for empty input, got %v", err)
	}
}

func TestIncludedClasses(t *testing.T) {
	classes := IncludedClasses()

	if len(classes) != 15 {
		t.Errorf("got %d included classes, want 15", len(classes))
	}
	if classes[0] != "motorway" {
		t.Errorf("first class = %s, want motorway", classes[0])
	}
	for _, c := range classes {
		if c == "footway" || c == "path" || c == "cycleway" {
			t.Errorf("excluded class %s leaked into query classes", c)
		}
	}
}
