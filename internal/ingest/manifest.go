package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// TrixelEntry names one trixel and the path (relative to the dataset's
// processed directory) of its data blob.
type TrixelEntry struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Manifest is the contents of a processed dataset's meta.json: the
// UTM placement needed to rebuild the dataset spatial index, the trixels
// produced at every backfilled depth, and the simplified altitude layers.
type Manifest struct {
	UTMZone          int               `json:"utmZone"`
	UTMHemisphere    string            `json:"utmHemisphere"`
	UTMCorners       [2][2]int         `json:"utmCorners"`
	TrixelsByDepth   map[int][]TrixelEntry `json:"trixelsByDepth"`
	SimplifiedLayers map[int]string    `json:"simplifiedLayers"`
}

// BuildManifest assembles a Manifest from a backfilled depth→names map and
// the altitudes Simplify produced layers for.
func BuildManifest(d Dataset, byDepth map[int][]string, altitudes []int) Manifest {
	trixelsByDepth := make(map[int][]TrixelEntry, len(byDepth))
	for depth, names := range byDepth {
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)

		entries := make([]TrixelEntry, 0, len(sorted))
		for _, name := range sorted {
			entries = append(entries, TrixelEntry{
				Name: name,
				Data: filepath.Join(trixelPath(name), "data.npy"),
			})
		}
		trixelsByDepth[depth] = entries
	}

	simplifiedLayers := make(map[int]string, len(altitudes))
	for _, altitude := range altitudes {
		simplifiedLayers[altitude] = filepath.Join("simplified", fmt.Sprintf("%d.npy", altitude))
	}

	return Manifest{
		UTMZone:          d.UTMZone,
		UTMHemisphere:    d.UTMHemisphere,
		UTMCorners:       [2][2]int{{d.MinX, d.MinY}, {d.MaxX, d.MaxY}},
		TrixelsByDepth:   trixelsByDepth,
		SimplifiedLayers: simplifiedLayers,
	}
}

// Write serializes m as indented JSON to <processedPath>/meta.json.
func Write(processedPath string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("ingest: marshal manifest: %w", err)
	}
	path := filepath.Join(processedPath, "meta.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &ErrIOError{Op: "write manifest", Path: path, Err: err}
	}
	return nil
}

// ReadManifest loads a previously written meta.json.
func ReadManifest(processedPath string) (Manifest, error) {
	path := filepath.Join(processedPath, "meta.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, &ErrIOError{Op: "read manifest", Path: path, Err: err}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, &ErrIOError{Op: "parse manifest", Path: path, Err: err}
	}
	return m, nil
}
