// Package htm is the public query facade consumed by an external HTTP
// gateway: list processed datasets, fetch a simplified layer, enumerate the
// trixels within a spherical cap, and fetch detailed per-trixel blobs.
//
// Every operation is pure and synchronous, takes a context.Context for
// cancellation even though none of the underlying I/O is long-running, and
// returns one of the typed errors in errors.go.
package htm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/windmesh/htm/internal/blobstore"
	"github.com/windmesh/htm/internal/datasetindex"
	"github.com/windmesh/htm/internal/geo"
	"github.com/windmesh/htm/internal/ingest"
	"github.com/windmesh/htm/internal/projection"
)

// Store is the query facade over a processed-datasets directory.
type Store struct {
	processedDir string
	blobs        blobstore.BlobStore
	toLatLon     projection.ToLatLonFunc
	index        *datasetindex.Index
}

// Option configures a Store.
type Option func(*Store)

// WithBlobStore overrides the blob serializer.
func WithBlobStore(b blobstore.BlobStore) Option {
	return func(s *Store) { s.blobs = b }
}

// WithProjection overrides the UTM-to-lat/lon seam used to build the
// dataset spatial index's footprints.
func WithProjection(f projection.ToLatLonFunc) Option {
	return func(s *Store) { s.toLatLon = f }
}

// Open builds a Store over processedDir, indexing every dataset's manifest
// for DatasetsNear. It does not fail if processedDir is empty; it fails
// only if processedDir cannot be read at all.
func Open(processedDir string, opts ...Option) (*Store, error) {
	s := &Store{
		processedDir: processedDir,
		blobs:        blobstore.NewGonumStore(),
		toLatLon:     projection.Default,
		index:        datasetindex.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.reindex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reindex() error {
	names, err := s.datasetNames()
	if err != nil {
		return err
	}

	entries := make([]datasetindex.Entry, 0, len(names))
	for _, name := range names {
		manifest, err := ingest.ReadManifest(filepath.Join(s.processedDir, name))
		if err != nil {
			continue // a manifest that fails to read is simply excluded from the pre-filter
		}
		entries = append(entries, footprint(name, manifest, s.toLatLon))
	}
	s.index.Rebuild(entries)
	return nil
}

func footprint(name string, m ingest.Manifest, toLatLon projection.ToLatLonFunc) datasetindex.Entry {
	corners := [4][2]int{
		{m.UTMCorners[0][0], m.UTMCorners[0][1]},
		{m.UTMCorners[0][0], m.UTMCorners[1][1]},
		{m.UTMCorners[1][0], m.UTMCorners[0][1]},
		{m.UTMCorners[1][0], m.UTMCorners[1][1]},
	}

	e := datasetindex.Entry{Name: name}
	for i, c := range corners {
		lat, lon := toLatLon(float64(c[0]), float64(c[1]), m.UTMZone, m.UTMHemisphere)
		if i == 0 {
			e.MinLat, e.MaxLat, e.MinLon, e.MaxLon = lat, lat, lon, lon
			continue
		}
		if lat < e.MinLat {
			e.MinLat = lat
		}
		if lat > e.MaxLat {
			e.MaxLat = lat
		}
		if lon < e.MinLon {
			e.MinLon = lon
		}
		if lon > e.MaxLon {
			e.MaxLon = lon
		}
	}
	return e
}

func (s *Store) datasetNames() ([]string, error) {
	entries, err := os.ReadDir(s.processedDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrIOError{Op: "read processed directory", Path: s.processedDir, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.processedDir, entry.Name(), "meta.json")); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// ListDatasets enumerates processed datasets and the simplified layer names
// each one offers.
func (s *Store) ListDatasets(ctx context.Context) (map[string][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.datasetNames()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(names))
	for _, name := range names {
		manifest, err := ingest.ReadManifest(filepath.Join(s.processedDir, name))
		if err != nil {
			return nil, err
		}
		layers := make([]string, 0, len(manifest.SimplifiedLayers))
		for altitude := range manifest.SimplifiedLayers {
			layers = append(layers, strconv.Itoa(altitude))
		}
		result[name] = layers
	}
	return result, nil
}

// GetSimplified returns the simplified altitude layer blob for dataset.
func (s *Store) GetSimplified(ctx context.Context, dataset, layer string) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	datasetDir := filepath.Join(s.processedDir, dataset)
	manifest, err := ingest.ReadManifest(datasetDir)
	if err != nil {
		return nil, &ErrNotFound{Kind: "dataset", Name: dataset}
	}

	altitude, err := strconv.Atoi(layer)
	if err != nil {
		return nil, &ErrNotFound{Kind: "layer", Name: layer}
	}
	relPath, ok := manifest.SimplifiedLayers[altitude]
	if !ok {
		return nil, &ErrNotFound{Kind: "layer", Name: layer}
	}

	rows, err := s.blobs.Load(filepath.Join(datasetDir, relPath))
	if err != nil {
		return nil, &ErrIOError{Op: "load simplified layer", Path: relPath, Err: err}
	}
	return rows, nil
}

// TrixelsInCap returns every trixel at ingest.DetailedDepth intersecting
// the cap centered at (lat, lon) with the given radius in meters.
func (s *Store) TrixelsInCap(ctx context.Context, lat, lon, radiusM float64) ([]TrixelView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateLatLon(lat, lon); err != nil {
		return nil, err
	}
	if radiusM < 0 || radiusM > ingest.MaxRadiusM {
		return nil, &geo.ErrInvalidArgument{Reason: fmt.Sprintf("radius must be between 0 and %g meters", ingest.MaxRadiusM)}
	}

	h := geo.NewHalfspace(geo.LatLonToXYZ(lat, lon), geo.SurfaceRadiusToCapDistance(radiusM))
	trixels, err := geo.ExpandedTrixelsInCap(h, ingest.DetailedDepth)
	if err != nil {
		return nil, err
	}

	views := make([]TrixelView, len(trixels))
	for i, t := range trixels {
		views[i] = newTrixelView(t)
	}
	return views, nil
}

// DetailedByTrixelNames returns the leaf blob for each named trixel, or an
// empty matrix for a name with no data.
func (s *Store) DetailedByTrixelNames(ctx context.Context, dataset string, names []string) (map[string][][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	datasetDir := filepath.Join(s.processedDir, dataset)
	if _, err := ingest.ReadManifest(datasetDir); err != nil {
		return nil, &ErrNotFound{Kind: "dataset", Name: dataset}
	}

	result := make(map[string][][]float64, len(names))
	for _, name := range names {
		if _, err := geo.FindFromName(name); err != nil {
			return nil, err
		}

		path := filepath.Join(datasetDir, strings.ReplaceAll(name, "-", string(filepath.Separator)), "data.npy")
		if _, err := os.Stat(path); err != nil {
			result[name] = [][]float64{}
			continue
		}

		rows, err := s.blobs.Load(path)
		if err != nil {
			return nil, &ErrIOError{Op: "load detailed blob", Path: path, Err: err}
		}
		result[name] = rows
	}
	return result, nil
}

// DatasetsNear pre-filters processed datasets by their UTM footprint
// against the given cap, supplementing the spec's literal query surface
// with the dataset spatial index the teacher's rtreego dependency enables.
func (s *Store) DatasetsNear(ctx context.Context, lat, lon, radiusM float64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateLatLon(lat, lon); err != nil {
		return nil, err
	}
	if radiusM < 0 || radiusM > ingest.MaxRadiusM {
		return nil, &geo.ErrInvalidArgument{Reason: fmt.Sprintf("radius must be between 0 and %g meters", ingest.MaxRadiusM)}
	}

	h := geo.NewHalfspace(geo.LatLonToXYZ(lat, lon), geo.SurfaceRadiusToCapDistance(radiusM))
	return s.index.Query(h), nil
}

func validateLatLon(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return &geo.ErrInvalidArgument{Reason: "latitude must be between -90 and 90"}
	}
	if lon < -180 || lon > 180 {
		return &geo.ErrInvalidArgument{Reason: "longitude must be between -180 and 180"}
	}
	return nil
}
