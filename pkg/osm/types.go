package osm

// Place is a single geocoding candidate returned by Nominatim's search
// endpoint. BoundingBox holds four numeric strings in the order
// south, north, west, east.
type Place struct {
	OSMType     string   `json:"osm_type"`
	OSMID       int64    `json:"osm_id"`
	Class       string   `json:"class,omitempty"`
	Type        string   `json:"type"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// OverpassElement represents an element returned from the Overpass API.
// Node elements carry Lat/Lon; way elements carry Nodes and Tags.
type OverpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat,omitempty"`
	Lon   float64           `json:"lon,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"` // For ways, list of node IDs
	Tags  map[string]string `json:"tags,omitempty"`
}

// OverpassResponse is the top-level Overpass API response envelope.
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}
