package geometry

import "math"

// Vector3 is a point or offset in world space. X and Z span the
// horizontal plane, Y is the vertical axis.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func NewVector3(x, y, z float64) Vector3 {
	return Vector3{x, y, z}
}

func (v Vector3) EqualWithEpsilon(o Vector3, epsilon float64) bool {
	return math.Abs(v.X-o.X) <= epsilon &&
		math.Abs(v.Y-o.Y) <= epsilon &&
		math.Abs(v.Z-o.Z) <= epsilon
}

func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func Add(a Vector3, b Vector3) Vector3 {
	return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func Sub(a Vector3, b Vector3) Vector3 {
	return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func Mul(a Vector3, s float64) Vector3 {
	return Vector3{a.X * s, a.Y * s, a.Z * s}
}

// Dimensions is the size of an entity. Width maps to the local X
// extent and Depth to the local Z extent. Height is carried for the
// debug observer but is not part of the horizontal collision math.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

func (d Dimensions) IsFinite() bool {
	return isFinite(d.Width) && isFinite(d.Height) && isFinite(d.Depth)
}

func (d Dimensions) IsValid() bool {
	return isFinite(d.Width) && isFinite(d.Height) && isFinite(d.Depth) &&
		d.Width > 0 && d.Height > 0 && d.Depth > 0
}
