package geometry

import "math"

// Oriented Bounding Box, horizontal plane only
//
// Entities in a layout rotate about the vertical axis and nothing
// else, so collision runs on 2D oriented rectangles in the XZ plane.
// The yaw-only constraint reduces the general SAT axis set to the
// 4 local axes of the two boxes, which keeps the test exact.

// SATEpsilon is the projection overlap tolerance. Boxes whose
// projections touch within this margin count as separated, so
// exactly-adjacent entities do not collide due to float noise.
const SATEpsilon = 1e-4

// Box2D is an oriented rectangle in the horizontal plane. It is
// derived per query from an entity pose and never mutated.
type Box2D struct {
	CenterX   float64
	CenterZ   float64
	HalfWidth float64
	HalfDepth float64
	Cos       float64
	Sin       float64
}

// NewBox2D builds a box from a world position, dimensions and a yaw
// rotation in radians. Non-finite inputs propagate into the box;
// Intersects guards against them.
func NewBox2D(position Vector3, dims Dimensions, yaw float64) Box2D {
	return Box2D{
		CenterX:   position.X,
		CenterZ:   position.Z,
		HalfWidth: dims.Width / 2,
		HalfDepth: dims.Depth / 2,
		Cos:       math.Cos(yaw),
		Sin:       math.Sin(yaw),
	}
}

// Corners returns the world-space corners in a fixed winding:
// bottom-left, bottom-right, top-right, top-left.
func (b Box2D) Corners() [4][2]float64 {
	local := [4][2]float64{
		{-b.HalfWidth, -b.HalfDepth},
		{b.HalfWidth, -b.HalfDepth},
		{b.HalfWidth, b.HalfDepth},
		{-b.HalfWidth, b.HalfDepth},
	}

	var corners [4][2]float64
	for i, c := range local {
		corners[i][0] = c[0]*b.Cos + c[1]*b.Sin + b.CenterX
		corners[i][1] = -c[0]*b.Sin + c[1]*b.Cos + b.CenterZ
	}
	return corners
}

// AABB returns the axis-aligned bounds of the rotated box.
func (b Box2D) AABB() (minX, minZ, maxX, maxZ float64) {
	corners := b.Corners()
	minX, minZ = corners[0][0], corners[0][1]
	maxX, maxZ = minX, minZ
	for _, c := range corners[1:] {
		minX = math.Min(minX, c[0])
		minZ = math.Min(minZ, c[1])
		maxX = math.Max(maxX, c[0])
		maxZ = math.Max(maxZ, c[1])
	}
	return minX, minZ, maxX, maxZ
}

// Finite reports whether every component of the box is a usable
// number. Callers are expected to guard their inputs; this exists so
// corrupted poses degrade to a no-collision verdict instead of
// poisoning the whole query.
func (b Box2D) Finite() bool {
	return isFinite(b.CenterX) && isFinite(b.CenterZ) &&
		isFinite(b.HalfWidth) && isFinite(b.HalfDepth) &&
		isFinite(b.Cos) && isFinite(b.Sin)
}

// Radius is the circumscribing circle radius.
func (b Box2D) Radius() float64 {
	return math.Sqrt(b.HalfWidth*b.HalfWidth + b.HalfDepth*b.HalfDepth)
}

func project(corners [4][2]float64, axisX, axisZ float64) (min, max float64) {
	min = corners[0][0]*axisX + corners[0][1]*axisZ
	max = min
	for _, c := range corners[1:] {
		p := c[0]*axisX + c[1]*axisZ
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}

// Intersects runs the separating axis test between two yaw-rotated
// boxes. Rejection stages run cheapest first:
//  1. axis-aligned distance against the summed max half-extents
//  2. center distance against the summed circumscribing radii
//  3. finiteness guard, corrupted input resolves to no collision
//  4. SAT over the 4 local axes, short-circuiting on separation
func Intersects(a Box2D, b Box2D) bool {
	ra := math.Max(a.HalfWidth, a.HalfDepth)
	rb := math.Max(b.HalfWidth, b.HalfDepth)
	if math.Abs(a.CenterX-b.CenterX) > ra+rb {
		return false
	}
	if math.Abs(a.CenterZ-b.CenterZ) > ra+rb {
		return false
	}

	dx := a.CenterX - b.CenterX
	dz := a.CenterZ - b.CenterZ
	reach := a.Radius() + b.Radius()
	if dx*dx+dz*dz > reach*reach {
		return false
	}

	if !isFinite(a.Cos) || !isFinite(a.Sin) || !isFinite(b.Cos) || !isFinite(b.Sin) {
		return false
	}

	cornersA := a.Corners()
	cornersB := b.Corners()

	// Local X axis is (cos, -sin), local Z axis is (sin, cos), per
	// the corner rotation above.
	axes := [4][2]float64{
		{a.Cos, -a.Sin},
		{a.Sin, a.Cos},
		{b.Cos, -b.Sin},
		{b.Sin, b.Cos},
	}

	for _, axis := range axes {
		minA, maxA := project(cornersA, axis[0], axis[1])
		minB, maxB := project(cornersB, axis[0], axis[1])
		if maxA <= minB+SATEpsilon || maxB <= minA+SATEpsilon {
			return false
		}
	}
	return true
}
