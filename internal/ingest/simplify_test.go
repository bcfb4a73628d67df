package ingest

import (
	"path/filepath"
	"testing"

	"github.com/windmesh/htm/internal/blobstore"
	"github.com/windmesh/htm/internal/geo"
)

func TestSimplifyBucketsByRoundedAltitude(t *testing.T) {
	root := t.TempDir()
	d := Dataset{Name: "test", ProcessedPath: root}
	store := blobstore.NewGonumStore()

	name := "N0-1-2"
	writeLeaf(t, store, root, name, [][]float64{
		{0, 0, 100.4, 1, 2, 3},
		{0, 0, 100.2, 3, 4, 5},
		{0, 0, 200.0, 10, 10, 10},
	})

	altitudes, err := Simplify(d, []string{name}, store, nil)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if len(altitudes) != 2 {
		t.Fatalf("got %d altitudes, want 2: %v", len(altitudes), altitudes)
	}

	rows100, err := store.Load(filepath.Join(root, "simplified", "100.npy"))
	if err != nil {
		t.Fatalf("Load 100.npy: %v", err)
	}
	if len(rows100) != 1 {
		t.Fatalf("got %d rows for altitude 100, want 1", len(rows100))
	}
	row := rows100[0]
	if row[3] != 2 || row[4] != 3 || row[5] != 4 {
		t.Fatalf("unexpected mean uvw: %v, want [2 3 4]", row[3:6])
	}

	trixel, _ := geo.FindFromName(name)
	wantLat, wantLon := geo.XYZToLatLon(trixel.Midpoint())
	if !almostEqual(row[0], wantLat, 1e-9) || !almostEqual(row[1], wantLon, 1e-9) {
		t.Fatalf("unexpected mid lat/lon: got (%g, %g), want (%g, %g)", row[0], row[1], wantLat, wantLon)
	}
}

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
