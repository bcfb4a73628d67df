// Package ingest implements the dataset discovery, UTM-to-trixel mapping,
// chunk writing, backfill, simplification, and manifest-writing pipeline
// described in SPEC_FULL.md §4.5-4.9.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/windmesh/htm/internal/geo"
)

// Ingest-wide depth and radius constants, carried verbatim from the domain
// model rather than made configurable.
const (
	IngestMinDepth  = 10
	IngestMaxDepth  = 20
	SimplifiedDepth = 20
	DetailedDepth   = 20
	MaxRadiusM      = 1000.0
)

// Dataset describes one unprocessed survey dataset discovered on disk.
type Dataset struct {
	Name            string
	UnprocessedPath string
	ProcessedPath   string
	UTMZone         int
	UTMHemisphere   string
	MinX, MinY      int
	MaxX, MaxY      int
	Layers          []string
}

type datasetMeta struct {
	UTMZone       int         `json:"utmZone"`
	UTMHemisphere string      `json:"utmHemisphere"`
	UTMCorners    [][]float64 `json:"utmCorners"`
}

// Discover scans unprocessedDir for ingestable datasets: subdirectories with
// a valid meta.json, at least one ".xy" layer file, and no existing
// directory under processedDir. Invalid or already-processed entries are
// skipped with a diagnostic written to diag rather than causing an error.
//
// Datasets are returned sorted by name, matching the deterministic order
// ingestion runs in.
func Discover(unprocessedDir, processedDir string, diag io.Writer) ([]Dataset, error) {
	entries, err := os.ReadDir(unprocessedDir)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", unprocessedDir, err)
	}

	skip := func(format string, args ...any) {
		fmt.Fprintf(diag, "skipping "+format+"\n", args...)
	}

	var datasets []Dataset
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		unprocessedPath := filepath.Join(unprocessedDir, name)
		processedPath := filepath.Join(processedDir, name)

		if _, err := os.Stat(processedPath); err == nil {
			skip("%s: a processed version already exists", name)
			continue
		}

		metaPath := filepath.Join(unprocessedPath, "meta.json")
		metaBytes, err := os.ReadFile(metaPath)
		if err != nil {
			skip("%s: meta.json is missing or unreadable", name)
			continue
		}

		var meta datasetMeta
		if err := json.Unmarshal(metaBytes, &meta); err != nil {
			skip("%s: meta.json is not valid JSON", name)
			continue
		}

		if meta.UTMHemisphere == "" {
			skip("%s: utmHemisphere is missing from meta.json", name)
			continue
		}
		if meta.UTMZone == 0 {
			skip("%s: utmZone is missing from meta.json", name)
			continue
		}
		if len(meta.UTMCorners) != 2 || len(meta.UTMCorners[0]) != 2 || len(meta.UTMCorners[1]) != 2 {
			skip("%s: utmCorners is not a 2x2 array of numbers", name)
			continue
		}

		x0, y0 := meta.UTMCorners[0][0], meta.UTMCorners[0][1]
		x1, y1 := meta.UTMCorners[1][0], meta.UTMCorners[1][1]
		minX, maxX := minMax(x0, x1)
		minY, maxY := minMax(y0, y1)
		if minX == maxX || minY == maxY {
			skip("%s: utmCorners do not form a rectangle", name)
			continue
		}

		layers, err := filepath.Glob(filepath.Join(unprocessedPath, "*.xy"))
		if err != nil {
			skip("%s: failed to glob layer files: %v", name, err)
			continue
		}
		if len(layers) == 0 {
			skip("%s: no .xy layers were found", name)
			continue
		}
		sort.Strings(layers)

		datasets = append(datasets, Dataset{
			Name:            name,
			UnprocessedPath: unprocessedPath,
			ProcessedPath:   processedPath,
			UTMZone:         meta.UTMZone,
			UTMHemisphere:   meta.UTMHemisphere,
			MinX:            int(minX),
			MinY:            int(minY),
			MaxX:            int(maxX),
			MaxY:            int(maxY),
			Layers:          layers,
		})
	}

	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Name < datasets[j].Name })
	return datasets, nil
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// UTMCenter is the dataset's UTM corner midpoint, truncated to integers:
// the origin that per-sample (x, y) offsets in layer files are relative to.
// meta.json's declared corners are used for this and nothing else — they
// anchor the center, but are never assumed to bound the layers' actual
// recorded content; ScanExtent computes that separately.
func (d Dataset) UTMCenter() (cx, cy int) {
	return (d.MinX + d.MaxX) / 2, (d.MinY + d.MaxY) / 2
}

// ScanExtent scans every layer file for the true min/max (x, y) offsets it
// records, the same way the mapping matrix must be sized. meta.json's
// utmCorners only anchor UTMCenter; nothing guarantees they enclose every
// row a layer file actually contains, so the mapping bounds are derived
// from the data itself instead.
func ScanExtent(d Dataset) (minX, maxX, minY, maxY int, err error) {
	if len(d.Layers) == 0 {
		return 0, 0, 0, 0, &geo.ErrInvalidArgument{Reason: "dataset has no layers to scan"}
	}

	minX, minY = math.MaxInt, math.MaxInt
	maxX, maxY = math.MinInt, math.MinInt

	for _, layerPath := range d.Layers {
		rows, err := parseLayerFile(layerPath)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		for _, r := range rows {
			if r.x < minX {
				minX = r.x
			}
			if r.x > maxX {
				maxX = r.x
			}
			if r.y < minY {
				minY = r.y
			}
			if r.y > maxY {
				maxY = r.y
			}
		}
	}

	if minX > maxX || minY > maxY {
		return 0, 0, 0, 0, &geo.ErrInvalidArgument{Reason: "dataset layers contain no rows"}
	}
	return minX, maxX, minY, maxY, nil
}

// trixelPath turns a trixel name like "N0-1-2" into the directory path
// "N0/1/2" that its blob is stored under.
func trixelPath(name string) string {
	return strings.ReplaceAll(name, "-", string(filepath.Separator))
}

// parentName drops the trailing "-i" path segment, returning the empty
// string for a root trixel (which has no parent).
func parentName(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return ""
	}
	return name[:idx]
}
