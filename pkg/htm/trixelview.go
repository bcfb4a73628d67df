package htm

import "github.com/windmesh/htm/internal/geo"

// LatLon is a geographic point in degrees.
type LatLon struct {
	Lat, Lon float64
}

// TrixelView is the gateway-facing rendering of a trixel: a name and its
// three vertices converted back to lat/lon, so callers never need to know
// about unit vectors.
type TrixelView struct {
	Name     string
	Vertices [3]LatLon
}

func newTrixelView(t geo.Trixel) TrixelView {
	var v TrixelView
	v.Name = t.Name
	for i, vertex := range t.Vertices {
		lat, lon := geo.XYZToLatLon(vertex)
		v.Vertices[i] = LatLon{Lat: lat, Lon: lon}
	}
	return v
}
