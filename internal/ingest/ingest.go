package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/windmesh/htm/internal/blobstore"
	"github.com/windmesh/htm/internal/projection"
)

// Options configures a Run, mirroring the teacher's pattern of a small
// options struct carrying collaborators and diagnostics rather than
// threading them through every call.
type Options struct {
	// ToLatLon overrides the UTM projection; nil uses projection.Default.
	ToLatLon projection.ToLatLonFunc
	// Store overrides the blob serializer; nil uses blobstore.NewGonumStore().
	Store blobstore.BlobStore
	// Diag receives progress and skip diagnostics. Defaults to os.Stderr.
	Diag io.Writer
}

func (o Options) resolve() Options {
	if o.ToLatLon == nil {
		o.ToLatLon = projection.Default
	}
	if o.Store == nil {
		o.Store = blobstore.NewGonumStore()
	}
	if o.Diag == nil {
		o.Diag = os.Stderr
	}
	return o
}

// Run discovers every ingestable dataset under unprocessedDir and ingests
// each in turn. A dataset that fails with a non-integrity error is skipped
// with a diagnostic; an IntegrityError aborts the whole run, per
// SPEC_FULL.md §7.
func Run(unprocessedDir, processedDir string, opts Options) error {
	opts = opts.resolve()

	datasets, err := Discover(unprocessedDir, processedDir, opts.Diag)
	if err != nil {
		return err
	}

	for _, d := range datasets {
		fmt.Fprintf(opts.Diag, "ingesting %s (%d layers)\n", d.Name, len(d.Layers))
		if err := IngestDataset(d, opts); err != nil {
			var integrity *ErrIntegrityError
			if errors.As(err, &integrity) {
				return fmt.Errorf("ingest: aborting: %w", err)
			}
			fmt.Fprintf(opts.Diag, "skipping %s: %v\n", d.Name, err)
			continue
		}
	}
	return nil
}

// IngestDataset runs the full sequential pipeline for one dataset: mapping
// build, per-layer chunk writes, backfill, simplification, manifest write.
func IngestDataset(d Dataset, opts Options) error {
	opts = opts.resolve()

	minX, maxX, minY, maxY, err := ScanExtent(d)
	if err != nil {
		return err
	}

	mapping, err := BuildMapping(d, minX, minY, maxX, maxY, opts.ToLatLon, opts.Diag)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(d.ProcessedPath, 0o755); err != nil {
		return &ErrIOError{Op: "create processed directory", Path: d.ProcessedPath, Err: err}
	}

	saved := make(map[string]bool)
	for _, layerPath := range d.Layers {
		layerSaved, err := WriteLayerChunks(d, layerPath, mapping, opts.ToLatLon, opts.Store)
		if err != nil {
			return err
		}
		for name := range layerSaved {
			saved[name] = true
		}
	}

	byDepth, err := Backfill(d, saved, opts.Store, opts.Diag)
	if err != nil {
		return err
	}

	altitudes, err := Simplify(d, byDepth[SimplifiedDepth], opts.Store, opts.Diag)
	if err != nil {
		return err
	}

	manifest := BuildManifest(d, byDepth, altitudes)
	return Write(d.ProcessedPath, manifest)
}
