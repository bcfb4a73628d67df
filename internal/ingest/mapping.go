package ingest

import (
	"fmt"
	"io"

	"github.com/windmesh/htm/internal/geo"
	"github.com/windmesh/htm/internal/projection"
)

// Mapping is a dense UTM-offset → trixel-name matrix at IngestMaxDepth,
// covering integer offsets [minX, maxX] x [minY, maxY] relative to a
// dataset's UTM center.
type Mapping struct {
	MinX, MinY int
	MaxX, MaxY int
	rows       [][]string
}

// TrixelName returns the trixel name mapped to UTM offset (x, y), or
// ErrPointNotContained if (x, y) falls outside the mapping's scanned extent.
func (m *Mapping) TrixelName(x, y int) (string, error) {
	if x < m.MinX || x > m.MaxX || y < m.MinY || y > m.MaxY {
		return "", &ErrPointNotContained{X: x, Y: y}
	}
	return m.rows[y-m.MinY][x-m.MinX], nil
}

// TotalEntries returns the number of mapped cells.
func (m *Mapping) TotalEntries() int {
	total := 0
	for _, row := range m.rows {
		total += len(row)
	}
	return total
}

// BuildMapping resolves the trixel at IngestMaxDepth for every integer UTM
// offset in [minX, maxX] x [minY, maxY] — the dataset's actual scanned
// layer extent (see ScanExtent), not its declared meta.json corners —
// iterating outer y ascending, inner x ascending.
//
// Consecutive cells are usually resolved to the same leaf trixel (raster
// spatial locality), so a single-slot cache checks whether the previous
// result still contains the new point before paying for a fresh descent.
func BuildMapping(d Dataset, minX, minY, maxX, maxY int, toLatLon projection.ToLatLonFunc, diag io.Writer) (*Mapping, error) {
	if toLatLon == nil {
		toLatLon = projection.Default
	}

	cx, cy := d.UTMCenter()
	height := maxY - minY + 1
	width := maxX - minX + 1
	if height <= 0 || width <= 0 {
		return nil, &geo.ErrInvalidArgument{Reason: "scanned layer extent is not a non-degenerate rectangle"}
	}

	rows := make([][]string, height)

	var prev *geo.Trixel
	cacheHits := 0
	total := height * width

	for y := minY; y <= maxY; y++ {
		row := make([]string, width)
		for x := minX; x <= maxX; x++ {
			utmX := float64(cx + x)
			utmY := float64(cy + y)

			lat, lon := toLatLon(utmX, utmY, d.UTMZone, d.UTMHemisphere)
			p := geo.LatLonToXYZ(lat, lon)

			var trixel geo.Trixel
			if prev != nil && prev.Contains(p) {
				trixel = *prev
				cacheHits++
			} else {
				t, err := geo.FindFromXYZ(p, IngestMaxDepth)
				if err != nil {
					return nil, fmt.Errorf("ingest: mapping cell (%d, %d): %w", x, y, err)
				}
				trixel = t
			}
			prev = &trixel
			row[x-minX] = trixel.Name
		}
		rows[y-minY] = row
	}

	if diag != nil && total > 0 {
		fmt.Fprintf(diag, "built mapping with %d entries, cache hit rate %.2f%%\n",
			total, float64(cacheHits)/float64(total)*100)
	}

	return &Mapping{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, rows: rows}, nil
}
