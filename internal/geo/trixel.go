package geo

import (
	"math"
	"strings"
)

// epsilon is the machine epsilon for 64-bit floats, used as the containment
// tolerance so that adjacent trixels tile the sphere without gaps.
var epsilon = math.Nextafter(1, 2) - 1

// Trixel is a single spherical triangle in the HTM, named by its descent
// path from an octahedron root.
//
// Trixels are values, not stored state: they are constructed on demand by
// descent from a root or by resolving a name, never persisted.
type Trixel struct {
	Name     string
	Vertices [3]Vec3
}

// Depth returns the trixel's depth: the number of path segments in its name,
// with a root trixel (no "-" segments) at depth 1.
func (t Trixel) Depth() int {
	return strings.Count(t.Name, "-") + 1
}

// Contains reports whether p lies inside t, using the asymmetric ≥ -ε
// tolerance required so adjacent trixels tile the sphere without gaps.
func (t Trixel) Contains(p Vec3) bool {
	v0, v1, v2 := t.Vertices[0], t.Vertices[1], t.Vertices[2]
	if Dot(Cross(v0, v1), p) < -epsilon {
		return false
	}
	if Dot(Cross(v1, v2), p) < -epsilon {
		return false
	}
	if Dot(Cross(v2, v0), p) < -epsilon {
		return false
	}
	return true
}

// Midpoint returns the normalized sum of t's three vertices — a
// representative point for the trixel, used by simplification.
func (t Trixel) Midpoint() Vec3 {
	v0, v1, v2 := t.Vertices[0], t.Vertices[1], t.Vertices[2]
	return Normalize(Add(Add(v0, v1), v2))
}

// Subdivide returns t's four children in the fixed order (-0, -1, -2, -3)
// required by the HTM naming convention.
func (t Trixel) Subdivide() [4]Trixel {
	v0, v1, v2 := t.Vertices[0], t.Vertices[1], t.Vertices[2]
	w0 := Midpoint(v1, v2)
	w1 := Midpoint(v2, v0)
	w2 := Midpoint(v0, v1)

	return [4]Trixel{
		{Name: t.Name + "-0", Vertices: [3]Vec3{v0, w2, w1}},
		{Name: t.Name + "-1", Vertices: [3]Vec3{v1, w0, w2}},
		{Name: t.Name + "-2", Vertices: [3]Vec3{v2, w1, w0}},
		{Name: t.Name + "-3", Vertices: [3]Vec3{w0, w1, w2}},
	}
}

// FindFromXYZ descends from the octahedron root containing p to the trixel
// at the given depth that contains p.
//
// depth must be ≥ 1. Returns ErrPointNotContained if descent finds no
// accepting child at some level — this should not happen for a point that
// is actually on the unit sphere.
func FindFromXYZ(p Vec3, depth int) (Trixel, error) {
	if depth < 1 {
		return Trixel{}, &ErrInvalidArgument{Reason: "depth must be >= 1"}
	}

	t := octantRoot(p)
	for i := 1; i < depth; i++ {
		children := t.Subdivide()
		found := false
		for _, c := range children {
			if c.Contains(p) {
				t = c
				found = true
				break
			}
		}
		if !found {
			return Trixel{}, &ErrPointNotContained{Point: p, Depth: depth}
		}
	}
	return t, nil
}

// FindFromLatLon is FindFromXYZ composed with LatLonToXYZ.
func FindFromLatLon(latDeg, lonDeg float64, depth int) (Trixel, error) {
	return FindFromXYZ(LatLonToXYZ(latDeg, lonDeg), depth)
}

// FindFromName resolves a trixel by its dash-separated descent path, e.g.
// "N0-2-1". Returns ErrInvalidArgument if the name does not match the
// grammar ^(N0|N1|N2|N3|S0|S1|S2|S3)(-[0-3])*$.
func FindFromName(name string) (Trixel, error) {
	parts := strings.Split(name, "-")
	if len(parts) == 0 {
		return Trixel{}, &ErrInvalidArgument{Reason: "empty trixel name"}
	}

	t, ok := Root(parts[0])
	if !ok {
		return Trixel{}, &ErrInvalidArgument{Reason: "unknown root trixel: " + parts[0]}
	}

	for _, seg := range parts[1:] {
		if len(seg) != 1 || seg[0] < '0' || seg[0] > '3' {
			return Trixel{}, &ErrInvalidArgument{Reason: "invalid child index: " + seg}
		}
		children := t.Subdivide()
		t = children[seg[0]-'0']
	}

	return t, nil
}

// SubtrixelsAtDepth returns t's descendants at the given depth, produced by
// iterated subdivision.
//
// depth must be >= t.Depth(); if equal, t itself is returned.
func (t Trixel) SubtrixelsAtDepth(depth int) ([]Trixel, error) {
	selfDepth := t.Depth()
	if depth < selfDepth {
		return nil, &ErrInvalidArgument{Reason: "depth must be >= the trixel's current depth"}
	}
	if depth == selfDepth {
		return []Trixel{t}, nil
	}

	frontier := []Trixel{t}
	for d := selfDepth; d < depth; d++ {
		next := make([]Trixel, 0, len(frontier)*4)
		for _, f := range frontier {
			children := f.Subdivide()
			next = append(next, children[0], children[1], children[2], children[3])
		}
		frontier = next
	}
	return frontier, nil
}
