package geo

// TrixelsInCap returns the trixels that intersect h, descending at most to
// depth. Fully-contained trixels are returned as soon as they classify Full
// and are never subdivided further; trixels still Partial at the target
// depth are returned as-is (the terminal frontier).
//
// depth must be >= 1. Implemented iteratively with an explicit worklist
// rather than recursively, per SPEC_FULL.md §9, so no call stack is
// proportional to depth and no full subtree is ever materialized.
func TrixelsInCap(h Halfspace, depth int) ([]Trixel, error) {
	if depth < 1 {
		return nil, &ErrInvalidArgument{Reason: "depth must be >= 1"}
	}

	var selected []Trixel
	var candidates []Trixel

	for _, root := range Roots() {
		switch h.Intersects(root) {
		case Full:
			selected = append(selected, root)
		case Partial:
			candidates = append(candidates, root)
		}
	}

	for i := 0; i < depth-1; i++ {
		var next []Trixel
		for _, candidate := range candidates {
			children := candidate.Subdivide()
			for _, child := range children {
				switch h.Intersects(child) {
				case Full:
					selected = append(selected, child)
				case Partial:
					next = append(next, child)
				}
			}
		}
		candidates = next
	}

	return append(selected, candidates...), nil
}

// ExpandedTrixelsInCap is TrixelsInCap followed by expanding every returned
// trixel shallower than depth down to exactly depth, so callers always get
// uniform leaf granularity.
func ExpandedTrixelsInCap(h Halfspace, depth int) ([]Trixel, error) {
	trixels, err := TrixelsInCap(h, depth)
	if err != nil {
		return nil, err
	}

	var expanded []Trixel
	for _, t := range trixels {
		if t.Depth() == depth {
			expanded = append(expanded, t)
			continue
		}
		sub, err := t.SubtrixelsAtDepth(depth)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, sub...)
	}
	return expanded, nil
}
