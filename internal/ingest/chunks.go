package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/windmesh/htm/internal/blobstore"
	"github.com/windmesh/htm/internal/projection"
)

// layerRow is one parsed "x y z u v w" line from a ".xy" layer file.
type layerRow struct {
	x, y, z int
	u, v, w float64
}

// parseLayerFile reads a whitespace-separated layer file of "x y z u v w"
// rows and asserts every row shares the same z (a layer is a planar slice).
func parseLayerFile(path string) ([]layerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open layer %s: %w", path, err)
	}
	defer f.Close()

	var rows []layerRow
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("ingest: %s:%d: expected 6 fields, got %d", path, lineNo, len(fields))
		}

		x, err1 := strconv.Atoi(fields[0])
		y, err2 := strconv.Atoi(fields[1])
		z, err3 := strconv.Atoi(fields[2])
		u, err4 := strconv.ParseFloat(fields[3], 64)
		v, err5 := strconv.ParseFloat(fields[4], 64)
		w, err6 := strconv.ParseFloat(fields[5], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
			return nil, fmt.Errorf("ingest: %s:%d: malformed row %q", path, lineNo, line)
		}

		rows = append(rows, layerRow{x: x, y: y, z: z, u: u, v: v, w: w})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: read layer %s: %w", path, err)
	}

	if len(rows) > 0 {
		z0 := rows[0].z
		for _, r := range rows {
			if r.z != z0 {
				return nil, fmt.Errorf("ingest: layer %s is not planar: z varies between %d and %d", path, z0, r.z)
			}
		}
	}

	return rows, nil
}

// trixelsForLayer bins a layer's rows by the trixel name the mapping assigns
// to their (x, y) cell, recomputing (lat, lon) for each row from its UTM
// position. A row whose (x, y) falls outside the mapping's scanned extent
// reports ErrPointNotContained rather than panicking.
func trixelsForLayer(d Dataset, rows []layerRow, mapping *Mapping, toLatLon projection.ToLatLonFunc) (map[string][][]float64, error) {
	if toLatLon == nil {
		toLatLon = projection.Default
	}
	cx, cy := d.UTMCenter()

	byTrixel := make(map[string][][]float64)
	for _, r := range rows {
		name, err := mapping.TrixelName(r.x, r.y)
		if err != nil {
			return nil, err
		}

		utmX := float64(cx + r.x)
		utmY := float64(cy + r.y)
		lat, lon := toLatLon(utmX, utmY, d.UTMZone, d.UTMHemisphere)

		byTrixel[name] = append(byTrixel[name], []float64{lat, lon, float64(r.z), r.u, r.v, r.w})
	}
	return byTrixel, nil
}

// WriteLayerChunks parses layerPath, bins its rows by trixel via mapping,
// and appends each trixel's rows onto its data.npy blob under
// dataset.ProcessedPath, creating it if absent.
//
// Returns the set of trixel names touched, which the caller accumulates
// into the saved-leaf-trixel set backfill starts from.
func WriteLayerChunks(d Dataset, layerPath string, mapping *Mapping, toLatLon projection.ToLatLonFunc, store blobstore.BlobStore) (map[string]bool, error) {
	rows, err := parseLayerFile(layerPath)
	if err != nil {
		return nil, err
	}

	byTrixel, err := trixelsForLayer(d, rows, mapping, toLatLon)
	if err != nil {
		return nil, err
	}

	saved := make(map[string]bool, len(byTrixel))
	for name, newRows := range byTrixel {
		dir := filepath.Join(d.ProcessedPath, trixelPath(name))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ingest: mkdir %s: %w", dir, err)
		}
		path := filepath.Join(dir, "data.npy")

		if err := appendRows(store, path, newRows); err != nil {
			return nil, err
		}
		saved[name] = true
	}
	return saved, nil
}

// appendRows concatenates newRows onto the existing blob at path (if any)
// and overwrites it.
func appendRows(store blobstore.BlobStore, path string, newRows [][]float64) error {
	if _, err := os.Stat(path); err == nil {
		existing, err := store.Load(path)
		if err != nil {
			return fmt.Errorf("ingest: load existing blob %s: %w", path, err)
		}
		newRows = append(existing, newRows...)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("ingest: stat %s: %w", path, err)
	}

	if err := store.Save(path, newRows); err != nil {
		return fmt.Errorf("ingest: save blob %s: %w", path, err)
	}
	return nil
}
