package render

import "sort"

// layerRanks orders major highway classes for painting. Lower rank paints
// later, so motorways end up on top. Unranked classes paint first.
var layerRanks = map[string]int{
	"motorway":  0,
	"trunk":     1,
	"primary":   2,
	"secondary": 3,
	"tertiary":  4,
}

const unrankedLayer = 99

// SortLayers orders paths for painting so that major roads render last
// and therefore on top. A single stable descending-rank sort keeps paths
// of equal rank in their input order, which also makes the sort
// idempotent.
func SortLayers(paths []ProjectedPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		return layerRank(paths[i].Class) > layerRank(paths[j].Class)
	})
}

func layerRank(class string) int {
	if r, ok := layerRanks[class]; ok {
		return r
	}
	return unrankedLayer
}
