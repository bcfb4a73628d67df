package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/windmesh/htm/internal/blobstore"
	"github.com/windmesh/htm/internal/geo"
)

// Simplify averages each depth-SimplifiedDepth trixel's rows by rounded
// altitude into one summary row per (trixel, altitude), then writes one
// blob per altitude under processed/<dataset>/simplified/<altitude>.npy.
//
// Returns the sorted list of altitudes a simplified layer was produced for.
func Simplify(d Dataset, trixelsAtDepth []string, store blobstore.BlobStore, diag io.Writer) ([]int, error) {
	byAltitude := make(map[int][][]float64)

	for _, name := range trixelsAtDepth {
		trixel, err := geo.FindFromName(name)
		if err != nil {
			return nil, &ErrIntegrityError{Reason: fmt.Sprintf("simplify: %q does not resolve to a trixel: %v", name, err)}
		}
		midLat, midLon := geo.XYZToLatLon(trixel.Midpoint())

		path := filepath.Join(d.ProcessedPath, trixelPath(name), "data.npy")
		rows, err := store.Load(path)
		if err != nil {
			return nil, &ErrIntegrityError{Reason: fmt.Sprintf("simplify: expected blob at %s: %v", path, err)}
		}

		buckets := make(map[int][][]float64)
		for _, row := range rows {
			// row layout: lat, lon, altitude, u, v, w
			altitude := int(roundHalfAwayFromZero(row[2]))
			buckets[altitude] = append(buckets[altitude], row[3:6])
		}

		for altitude, points := range buckets {
			u, v, w := meanXYZ(points)
			byAltitude[altitude] = append(byAltitude[altitude], []float64{midLat, midLon, float64(altitude), u, v, w})
		}
	}

	simplifiedDir := filepath.Join(d.ProcessedPath, "simplified")
	if err := os.MkdirAll(simplifiedDir, 0o755); err != nil {
		return nil, &ErrIOError{Op: "create simplified directory", Path: simplifiedDir, Err: err}
	}

	altitudes := make([]int, 0, len(byAltitude))
	for altitude := range byAltitude {
		altitudes = append(altitudes, altitude)
	}
	sort.Ints(altitudes)

	for _, altitude := range altitudes {
		path := filepath.Join(simplifiedDir, fmt.Sprintf("%d.npy", altitude))
		if err := store.Save(path, byAltitude[altitude]); err != nil {
			return nil, &ErrIOError{Op: "write simplified layer", Path: path, Err: err}
		}
	}

	if diag != nil {
		fmt.Fprintf(diag, "generated %d simplified altitude layers\n", len(altitudes))
	}

	return altitudes, nil
}

func meanXYZ(points [][]float64) (u, v, w float64) {
	for _, p := range points {
		u += p[0]
		v += p[1]
		w += p[2]
	}
	n := float64(len(points))
	return u / n, v / n, w / n
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int(x + 0.5))
	}
	return float64(int(x - 0.5))
}
