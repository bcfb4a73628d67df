package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/windmesh/htm/internal/blobstore"
)

func TestParseLayerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layer1.xy")
	content := "0 0 5 1.0 2.0 3.0\n1 0 5 4.0 5.0 6.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := parseLayerFile(path)
	if err != nil {
		t.Fatalf("parseLayerFile: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].x != 0 || rows[0].y != 0 || rows[0].z != 5 {
		t.Fatalf("unexpected row[0]: %+v", rows[0])
	}
	if rows[1].u != 4.0 {
		t.Fatalf("unexpected row[1].u: %v", rows[1].u)
	}
}

func TestParseLayerFileRejectsNonPlanar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layer1.xy")
	content := "0 0 5 1.0 2.0 3.0\n1 0 6 4.0 5.0 6.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := parseLayerFile(path); err == nil {
		t.Fatal("expected error for non-planar layer")
	}
}

func TestWriteLayerChunksAppendsAcrossLayers(t *testing.T) {
	root := t.TempDir()
	d := Dataset{
		Name: "test", ProcessedPath: root, UTMZone: 33, UTMHemisphere: "N",
		MinX: -1, MaxX: 1, MinY: -1, MaxY: 1,
	}

	mapping, err := BuildMapping(d, -1, -1, 1, 1, identityLatLon, nil)
	if err != nil {
		t.Fatalf("BuildMapping: %v", err)
	}

	layer1 := filepath.Join(root, "layer1.xy")
	os.WriteFile(layer1, []byte("0 0 5 1.0 1.0 1.0\n"), 0o644)
	layer2 := filepath.Join(root, "layer2.xy")
	os.WriteFile(layer2, []byte("0 0 6 2.0 2.0 2.0\n"), 0o644)

	store := blobstore.NewGonumStore()

	saved1, err := WriteLayerChunks(d, layer1, mapping, identityLatLon, store)
	if err != nil {
		t.Fatalf("WriteLayerChunks layer1: %v", err)
	}
	if len(saved1) != 1 {
		t.Fatalf("saved1 = %v, want 1 trixel", saved1)
	}

	var name string
	for n := range saved1 {
		name = n
	}

	_, err = WriteLayerChunks(d, layer2, mapping, identityLatLon, store)
	if err != nil {
		t.Fatalf("WriteLayerChunks layer2: %v", err)
	}

	path := filepath.Join(root, trixelPath(name), "data.npy")
	rows, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows after two layers, want 2", len(rows))
	}
}
