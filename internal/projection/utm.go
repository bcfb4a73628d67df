// Package projection converts UTM survey coordinates into geographic
// latitude/longitude, the external collaborator the ingestion pipeline uses
// to place raw survey samples on the HTM sphere.
package projection

import "math"

// WGS84 ellipsoid constants.
const (
	semiMajorAxis    = 6378137.0
	flattening       = 1 / 298.257223563
	utmScaleFactor   = 0.9996
	falseEasting     = 500000.0
	falseNorthingSth = 10000000.0
)

// ToLatLon converts a UTM easting/northing pair in the given zone and
// hemisphere ("N" or "S") into WGS84 latitude/longitude degrees.
//
// This is the injectable seam ingestion calls for every raw sample; callers
// needing a different datum or a vendored projection library can swap it out
// without touching the rest of the pipeline.
type ToLatLonFunc func(easting, northing float64, zone int, hemisphere string) (lat, lon float64)

// Default is the package's reference transverse-Mercator inverse, used
// whenever ingestion is not configured with an override.
var Default ToLatLonFunc = ToLatLon

// ToLatLon is the reference implementation of ToLatLonFunc: Karney's
// transverse-Mercator inverse series, truncated to third order, which is
// accurate to well under a millimeter within a UTM zone.
func ToLatLon(easting, northing float64, zone int, hemisphere string) (lat, lon float64) {
	x := easting - falseEasting
	y := northing
	if hemisphere == "S" || hemisphere == "s" {
		y -= falseNorthingSth
	}

	a := semiMajorAxis
	f := flattening
	n := f / (2 - f)
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n

	A := a / (1 + n) * (1 + n2/4 + n4/64)

	beta1 := n/2 - 2*n2/3 + 37*n3/96
	beta2 := n2/48 + n3/15
	beta3 := 17 * n3 / 480

	xiPrime := y / (utmScaleFactor * A)
	etaPrime := x / (utmScaleFactor * A)

	xi := xiPrime - (beta1*math.Sin(2*xiPrime)*math.Cosh(2*etaPrime) +
		beta2*math.Sin(4*xiPrime)*math.Cosh(4*etaPrime) +
		beta3*math.Sin(6*xiPrime)*math.Cosh(6*etaPrime))
	eta := etaPrime - (beta1*math.Cos(2*xiPrime)*math.Sinh(2*etaPrime) +
		beta2*math.Cos(4*xiPrime)*math.Sinh(4*etaPrime) +
		beta3*math.Cos(6*xiPrime)*math.Sinh(6*etaPrime))

	chi := math.Asin(math.Sin(xi) / math.Cosh(eta))

	delta1 := 2*n - 2*n2/3 - 2*n3
	delta2 := 7*n2/3 - 8*n3/5
	delta3 := 56 * n3 / 15

	latRad := chi + delta1*math.Sin(2*chi) + delta2*math.Sin(4*chi) + delta3*math.Sin(6*chi)
	lonRad := math.Atan2(math.Sinh(eta), math.Cos(xi))

	centralMeridian := float64(zone)*6 - 183
	lon = centralMeridian + lonRad*180/math.Pi
	lat = latRad * 180 / math.Pi
	return lat, lon
}
