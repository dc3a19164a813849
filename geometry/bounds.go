package geometry

// Bounds is the axis-aligned footprint of a floor or zone in world
// space. X and Z are the minimum corner.
type Bounds struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

func (b Bounds) ContainsPoint(x float64, z float64, epsilon float64) bool {
	return InRangeWithEpsilon(x, b.X, b.X+b.Width, epsilon) &&
		InRangeWithEpsilon(z, b.Z, b.Z+b.Length, epsilon)
}

// ContainsBox reports whether all 4 corners of the box sit inside the
// bounds, within epsilon. Corner-on-boundary counts as inside.
func (b Bounds) ContainsBox(box Box2D, epsilon float64) bool {
	for _, c := range box.Corners() {
		if !b.ContainsPoint(c[0], c[1], epsilon) {
			return false
		}
	}
	return true
}

// Overlaps is the strict axis-aligned overlap test used for zone
// against zone checks. Zones sharing an edge do not overlap.
func (b Bounds) Overlaps(o Bounds) bool {
	if b.X >= o.X+o.Width {
		return false
	}
	if b.X+b.Width <= o.X {
		return false
	}
	if b.Z >= o.Z+o.Length {
		return false
	}
	if b.Z+b.Length <= o.Z {
		return false
	}
	return true
}
