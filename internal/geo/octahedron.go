package geo

// Cardinal axes of the octahedron the HTM is rooted in.
var (
	axisPX = Vec3{1, 0, 0}
	axisNX = Vec3{-1, 0, 0}
	axisPY = Vec3{0, 1, 0}
	axisNY = Vec3{0, -1, 0}
	axisPZ = Vec3{0, 0, 1}
	axisNZ = Vec3{0, 0, -1}
)

// rootNames lists the eight root trixel names in a fixed order; used for
// deterministic traversal in enumerate.go.
var rootNames = [8]string{"N0", "N1", "N2", "N3", "S0", "S1", "S2", "S3"}

// roots holds the eight octahedron root trixels, keyed by name. Vertex order
// is fixed per the HTM naming convention and must never be reordered: child
// naming during subdivision depends on it byte-for-byte.
var roots = map[string]Trixel{
	"N0": {Name: "N0", Vertices: [3]Vec3{axisPX, axisPZ, axisNY}},
	"N1": {Name: "N1", Vertices: [3]Vec3{axisNY, axisPZ, axisNX}},
	"N2": {Name: "N2", Vertices: [3]Vec3{axisNX, axisPZ, axisPY}},
	"N3": {Name: "N3", Vertices: [3]Vec3{axisPY, axisPZ, axisPX}},
	"S0": {Name: "S0", Vertices: [3]Vec3{axisPX, axisNZ, axisPY}},
	"S1": {Name: "S1", Vertices: [3]Vec3{axisPY, axisNZ, axisNX}},
	"S2": {Name: "S2", Vertices: [3]Vec3{axisNX, axisNZ, axisNY}},
	"S3": {Name: "S3", Vertices: [3]Vec3{axisNY, axisNZ, axisPX}},
}

// Root returns the named octahedron root trixel and whether it exists.
func Root(name string) (Trixel, bool) {
	t, ok := roots[name]
	return t, ok
}

// Roots returns the eight root trixels in their fixed, deterministic order
// (N0, N1, N2, N3, S0, S1, S2, S3).
func Roots() []Trixel {
	out := make([]Trixel, 0, 8)
	for _, name := range rootNames {
		out = append(out, roots[name])
	}
	return out
}

// octantRoot classifies a point by the sign pattern of (x, y, z) into the
// octahedron root that must contain it.
func octantRoot(v Vec3) Trixel {
	if v.Z > 0 {
		if v.Y > 0 {
			if v.X > 0 {
				return roots["N3"]
			}
			return roots["N2"]
		}
		if v.X > 0 {
			return roots["N0"]
		}
		return roots["N1"]
	}
	if v.Y > 0 {
		if v.X > 0 {
			return roots["S0"]
		}
		return roots["S1"]
	}
	if v.X > 0 {
		return roots["S3"]
	}
	return roots["S2"]
}
