package projection

import "testing"

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestToLatLonKnownPoint(t *testing.T) {
	// Zone 33N, roughly the UTM origin (500000, 0) sits on the equator at
	// the zone's central meridian (15E).
	lat, lon := ToLatLon(500000, 0, 33, "N")
	if !almostEqual(lat, 0, 1e-6) {
		t.Errorf("lat = %g, want ~0", lat)
	}
	if !almostEqual(lon, 15, 1e-6) {
		t.Errorf("lon = %g, want ~15", lon)
	}
}

func TestToLatLonSouthernHemisphereSign(t *testing.T) {
	lat, _ := ToLatLon(500000, 10000000, 33, "S")
	if !almostEqual(lat, 0, 1e-6) {
		t.Errorf("lat = %g, want ~0 at the false-northing origin", lat)
	}
}
