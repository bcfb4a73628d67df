package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/windmesh/htm/internal/blobstore"
)

func writeLeaf(t *testing.T, store blobstore.BlobStore, root, name string, rows [][]float64) {
	t.Helper()
	dir := filepath.Join(root, trixelPath(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(filepath.Join(dir, "data.npy"), rows); err != nil {
		t.Fatal(err)
	}
}

func TestBackfillMergesSiblingsAtParent(t *testing.T) {
	root := t.TempDir()
	d := Dataset{Name: "test", ProcessedPath: root}
	store := blobstore.NewGonumStore()

	// Depth 11 leaves sharing parent "N0-0-0-0-0-0-0-0-0-0" at depth 10.
	leafA := "N0-0-0-0-0-0-0-0-0-0-0"
	leafB := "N0-0-0-0-0-0-0-0-0-0-1"
	rowsA := [][]float64{{1, 2, 3, 4, 5, 6}}
	rowsB := [][]float64{{7, 8, 9, 10, 11, 12}}

	writeLeaf(t, store, root, leafA, rowsA)
	writeLeaf(t, store, root, leafB, rowsB)

	leaves := map[string]bool{leafA: true, leafB: true}

	var diag bytes.Buffer
	byDepth, err := Backfill(d, leaves, store, &diag)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}

	parent := parentName(leafA)
	if parentName(leafB) != parent {
		t.Fatalf("test setup bug: leaves do not share a parent")
	}

	parentRows, err := store.Load(filepath.Join(root, trixelPath(parent), "data.npy"))
	if err != nil {
		t.Fatalf("Load parent blob: %v", err)
	}
	if len(parentRows) != 2 {
		t.Fatalf("parent has %d rows, want 2 (union of both children)", len(parentRows))
	}

	if names, ok := byDepth[IngestMinDepth]; !ok || len(names) == 0 {
		t.Fatalf("byDepth[%d] missing or empty: %v", IngestMinDepth, byDepth)
	}
}

func TestBackfillRejectsMixedDepths(t *testing.T) {
	root := t.TempDir()
	d := Dataset{Name: "test", ProcessedPath: root}
	store := blobstore.NewGonumStore()

	writeLeaf(t, store, root, "N0-0-0-0-0-0-0-0-0-0-0", [][]float64{{1, 2, 3, 4, 5, 6}})
	writeLeaf(t, store, root, "N0-0-0-0-0-0-0-0-0-0", [][]float64{{1, 2, 3, 4, 5, 6}})

	leaves := map[string]bool{
		"N0-0-0-0-0-0-0-0-0-0-0": true,
		"N0-0-0-0-0-0-0-0-0-0":   true,
	}

	if _, err := Backfill(d, leaves, store, nil); err == nil {
		t.Fatal("expected integrity error for mixed-depth leaves")
	}
}
