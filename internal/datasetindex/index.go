// Package datasetindex provides a fast geographic pre-filter over processed
// datasets, so a caller asking "which datasets are near me" doesn't have to
// open every manifest on disk.
//
// This supplements the query surface in SPEC_FULL.md §6: the HTM geometry
// kernel answers "which trixels intersect this cap", and this package
// answers "which datasets' UTM footprints intersect this cap" using the
// same R-tree approach the teacher used for chart lookup.
package datasetindex

import (
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/windmesh/htm/internal/geo"
)

// Entry is one dataset's geographic footprint, expressed as a lat/lon
// bounding box.
type Entry struct {
	Name           string
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Bounds implements rtreego.Spatial.
func (e Entry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.MinLon, e.MinLat}
	lengths := []float64{
		maxFloat(e.MaxLon-e.MinLon, 1e-9),
		maxFloat(e.MaxLat-e.MinLat, 1e-9),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Index is a concurrency-safe, read-mostly R-tree over dataset footprints.
// It is rebuilt wholesale on Rebuild (cheap: one entry per dataset) rather
// than updated incrementally, mirroring how the teacher's ChartCache guards
// its own map and LRU list with a single RWMutex.
type Index struct {
	mu    sync.RWMutex
	tree  *rtreego.Rtree
	names map[string]Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{
		tree:  rtreego.NewTree(2, 25, 50),
		names: make(map[string]Entry),
	}
}

// Rebuild replaces the index contents with entries.
func (idx *Index) Rebuild(entries []Entry) {
	tree := rtreego.NewTree(2, 25, 50)
	names := make(map[string]Entry, len(entries))
	for _, e := range entries {
		tree.Insert(e)
		names[e.Name] = e
	}

	idx.mu.Lock()
	idx.tree = tree
	idx.names = names
	idx.mu.Unlock()
}

// Query returns the names of datasets whose bounding box intersects the
// cap's own bounding box, sorted for deterministic output. This is a
// conservative pre-filter: it over-approximates a spherical cap by its
// lat/lon bounding rectangle, so callers needing exact cap membership
// should still test candidate trixels with geo.Halfspace.Intersects.
func (idx *Index) Query(h geo.Halfspace) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	minLat, minLon, maxLat, maxLon := capBoundingBox(h)
	point := rtreego.Point{minLon, minLat}
	lengths := []float64{maxFloat(maxLon-minLon, 1e-9), maxFloat(maxLat-minLat, 1e-9)}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	results := idx.tree.SearchIntersect(rect)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.(Entry).Name)
	}
	sort.Strings(names)
	return names
}

// capBoundingBox returns a conservative lat/lon rectangle enclosing h.
func capBoundingBox(h geo.Halfspace) (minLat, minLon, maxLat, maxLon float64) {
	centerLat, centerLon := geo.XYZToLatLon(h.Vector)
	radiusDeg := h.Arcangle() * 180 / math.Pi

	minLat = clampLat(centerLat - radiusDeg)
	maxLat = clampLat(centerLat + radiusDeg)

	// Near the poles the cap's longitude span grows without bound; widen to
	// the full range rather than trying to be precise, since this is only
	// ever a pre-filter ahead of an exact halfspace test.
	if maxLat >= 89 || minLat <= -89 {
		return minLat, -180, maxLat, 180
	}

	// A cap that does not reach a pole spans asin(sin r / cos lat) of
	// longitude either side of its center; a span crossing the antimeridian
	// widens to the full range.
	lonRadius := math.Asin(math.Sin(h.Arcangle())/math.Cos(centerLat*math.Pi/180)) * 180 / math.Pi
	minLon = centerLon - lonRadius
	maxLon = centerLon + lonRadius
	if minLon < -180 || maxLon > 180 {
		return minLat, -180, maxLat, 180
	}
	return minLat, minLon, maxLat, maxLon
}

func clampLat(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}
