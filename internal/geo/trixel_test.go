package geo

import (
	"math/rand"
	"testing"
)

func TestContainmentSelfConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 2000; i++ {
		lat := rng.Float64()*180 - 90
		lon := rng.Float64()*360 - 180

		trixel, err := FindFromLatLon(lat, lon, 6)
		if err != nil {
			t.Fatalf("FindFromLatLon(%g, %g, 6): %v", lat, lon, err)
		}
		p := LatLonToXYZ(lat, lon)
		if !trixel.Contains(p) {
			t.Fatalf("trixel %s found for (%g, %g) does not contain its own point", trixel.Name, lat, lon)
		}
	}
}

func TestChildPartitionCoversParent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 2000; i++ {
		lat := rng.Float64()*180 - 90
		lon := rng.Float64()*360 - 180
		p := LatLonToXYZ(lat, lon)

		parent := octantRoot(p)
		if !parent.Contains(p) {
			t.Fatalf("root %s does not contain (%g, %g)", parent.Name, lat, lon)
		}

		children := parent.Subdivide()
		accepted := 0
		for _, c := range children {
			if c.Contains(p) {
				accepted++
			}
		}
		if accepted == 0 {
			t.Fatalf("no child of %s accepts point at (%g, %g)", parent.Name, lat, lon)
		}
	}
}

func TestSubdivideChildNaming(t *testing.T) {
	root, _ := Root("N0")
	children := root.Subdivide()
	want := []string{"N0-0", "N0-1", "N0-2", "N0-3"}
	for i, c := range children {
		if c.Name != want[i] {
			t.Errorf("children[%d].Name = %s, want %s", i, c.Name, want[i])
		}
	}
}

func TestNameRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	for i := 0; i < 1000; i++ {
		lat := rng.Float64()*180 - 90
		lon := rng.Float64()*360 - 180

		trixel, err := FindFromLatLon(lat, lon, 8)
		if err != nil {
			t.Fatalf("FindFromLatLon: %v", err)
		}

		resolved, err := FindFromName(trixel.Name)
		if err != nil {
			t.Fatalf("FindFromName(%s): %v", trixel.Name, err)
		}
		if resolved.Name != trixel.Name {
			t.Fatalf("roundtrip name mismatch: %s != %s", resolved.Name, trixel.Name)
		}
		for i := range trixel.Vertices {
			if !almostEqual(trixel.Vertices[i].X, resolved.Vertices[i].X, 1e-12) ||
				!almostEqual(trixel.Vertices[i].Y, resolved.Vertices[i].Y, 1e-12) ||
				!almostEqual(trixel.Vertices[i].Z, resolved.Vertices[i].Z, 1e-12) {
				t.Fatalf("roundtrip vertex mismatch at %d for %s", i, trixel.Name)
			}
		}
	}
}

func TestFindFromNameRejectsGarbage(t *testing.T) {
	cases := []string{"", "X0", "N0-4", "N0-a", "n0"}
	for _, name := range cases {
		if _, err := FindFromName(name); err == nil {
			t.Errorf("FindFromName(%q) succeeded, want error", name)
		}
	}
}

func TestDepth(t *testing.T) {
	root, _ := Root("N0")
	if root.Depth() != 1 {
		t.Fatalf("root depth = %d, want 1", root.Depth())
	}
	sub, err := root.SubtrixelsAtDepth(4)
	if err != nil {
		t.Fatalf("SubtrixelsAtDepth: %v", err)
	}
	if len(sub) != 64 {
		t.Fatalf("len(sub) = %d, want 64 (4^3)", len(sub))
	}
	for _, s := range sub {
		if s.Depth() != 4 {
			t.Fatalf("subtrixel %s depth = %d, want 4", s.Name, s.Depth())
		}
	}
}

func TestFindFromXYZRejectsInvalidDepth(t *testing.T) {
	if _, err := FindFromXYZ(Vec3{1, 0, 0}, 0); err == nil {
		t.Fatal("FindFromXYZ with depth 0 should error")
	}
}
