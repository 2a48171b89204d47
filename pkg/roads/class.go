// Package roads implements the extraction pipeline that turns a city name
// into a set of road polylines with a tight geographic bounding box.
package roads

// Class holds the render weight and content filter for one highway
// classification.
type Class struct {
	Weight  float64
	Include bool
}

// classOrder fixes the order classes appear in query filters so query
// strings are deterministic.
var classOrder = []string{
	"motorway",
	"trunk",
	"primary",
	"secondary",
	"tertiary",
	"unclassified",
	"residential",
	"motorway_link",
	"trunk_link",
	"primary_link",
	"secondary_link",
	"tertiary_link",
	"service",
	"living_street",
	"pedestrian",
	"footway",
	"path",
	"cycleway",
}

// classTable is the road classification hierarchy. It is process-wide
// constant configuration, shared read-only across requests. Classes with
// Include=false are dropped during assembly as a content filter, not an
// error: footpaths and cycleways don't belong on a road map.
var classTable = map[string]Class{
	"motorway":       {Weight: 4, Include: true},
	"trunk":          {Weight: 3.5, Include: true},
	"primary":        {Weight: 3, Include: true},
	"secondary":      {Weight: 2.5, Include: true},
	"tertiary":       {Weight: 2, Include: true},
	"unclassified":   {Weight: 1.5, Include: true},
	"residential":    {Weight: 1, Include: true},
	"motorway_link":  {Weight: 2.5, Include: true},
	"trunk_link":     {Weight: 2, Include: true},
	"primary_link":   {Weight: 2, Include: true},
	"secondary_link": {Weight: 1.5, Include: true},
	"tertiary_link":  {Weight: 1.5, Include: true},
	"service":        {Weight: 0.5, Include: true},
	"living_street":  {Weight: 0.8, Include: true},
	"pedestrian":     {Weight: 0.5, Include: true},
	"footway":        {Weight: 0.3, Include: false},
	"path":           {Weight: 0.3, Include: false},
	"cycleway":       {Weight: 0.3, Include: false},
}

// defaultClass is assumed for ways whose highway tag is unset.
// TODO: this conflates genuinely unclassified roads with untagged data;
// revisit if it ever produces visible noise.
const defaultClass = "unclassified"

// IncludedClasses returns the highway classes kept by the content filter,
// in stable order, for use in query alternation patterns.
func IncludedClasses() []string {
	out := make([]string, 0, len(classOrder))
	for _, name := range classOrder {
		if classTable[name].Include {
			out = append(out, name)
		}
	}
	return out
}

// ClassWeight returns the render weight for a highway class, defaulting
// to 1 for classes missing from the table.
func ClassWeight(name string) float64 {
	if c, ok := classTable[name]; ok {
		return c.Weight
	}
	return 1
}
