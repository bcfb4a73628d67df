package geo

import (
	"math/rand"
	"testing"
)

func TestTrixelsInCapCompleteness(t *testing.T) {
	center := LatLonToXYZ(10, 20)
	h := NewHalfspace(center, SurfaceRadiusToCapDistance(50_000))

	trixels, err := ExpandedTrixelsInCap(h, 8)
	if err != nil {
		t.Fatalf("ExpandedTrixelsInCap: %v", err)
	}
	if len(trixels) == 0 {
		t.Fatal("expected at least one trixel in cap")
	}

	rng := rand.New(rand.NewSource(5))
	angle := SurfaceRadiusToAngle(50_000)

	misses := 0
	for i := 0; i < 500; i++ {
		// Sample points within the cap by perturbing the center slightly and
		// rejecting anything the angular test puts outside it.
		lat := 10 + (rng.Float64()*2-1)*0.3
		lon := 20 + (rng.Float64()*2-1)*0.3
		p := LatLonToXYZ(lat, lon)
		if AngleBetween(center, p) > angle {
			continue
		}

		found := false
		for _, tr := range trixels {
			if tr.Contains(p) {
				found = true
				break
			}
		}
		if !found {
			misses++
		}
	}
	if misses > 0 {
		t.Fatalf("%d in-cap sample points were not covered by any returned trixel", misses)
	}
}

func TestTrixelsInCapSoundness(t *testing.T) {
	center := LatLonToXYZ(-40, 120)
	h := NewHalfspace(center, SurfaceRadiusToCapDistance(20_000))

	trixels, err := TrixelsInCap(h, 10)
	if err != nil {
		t.Fatalf("TrixelsInCap: %v", err)
	}
	for _, tr := range trixels {
		if h.Intersects(tr) == Outside {
			t.Fatalf("trixel %s returned by TrixelsInCap does not intersect the cap", tr.Name)
		}
	}
}

func TestTrixelsInCapZeroRadiusYieldsContainingTrixel(t *testing.T) {
	center := LatLonToXYZ(0, 0)
	h := NewHalfspace(center, SurfaceRadiusToCapDistance(0))

	trixels, err := ExpandedTrixelsInCap(h, 5)
	if err != nil {
		t.Fatalf("ExpandedTrixelsInCap: %v", err)
	}
	if len(trixels) == 0 {
		t.Fatal("zero-radius cap returned no trixels")
	}

	found := false
	for _, tr := range trixels {
		if tr.Contains(center) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("zero-radius cap's containing trixel was not among the results")
	}
}

func TestTrixelsInCapRejectsInvalidDepth(t *testing.T) {
	h := NewHalfspace(Vec3{1, 0, 0}, 0.9)
	if _, err := TrixelsInCap(h, 0); err == nil {
		t.Fatal("TrixelsInCap with depth 0 should error")
	}
}
