package vmath

// NearPlane is the minimum camera distance a point must have to be projected
const NearPlane = 0.05

// Projection is the single fixed perspective divide used by scene layers
// Camera sits on the -Z axis at Distance from the origin looking toward +Z
type Projection struct {
	Focal    float64 // Focal length in sub-pixels
	Distance float64 // Camera distance from scene origin
	Center   Vec2    // Screen position of the scene origin
	AspectX  float64 // Horizontal stretch to compensate non-square sub-pixels
}

// Project maps a scene point to screen coordinates and a depth where greater means nearer
// ok is false when the point is at or behind the near plane
func (p Projection) Project(v Vec3) (screen Vec2, depth float64, ok bool) {
	z := v.Z + p.Distance
	if z <= NearPlane {
		return Vec2{}, 0, false
	}

	s := p.Focal / z
	aspect := p.AspectX
	if aspect == 0 {
		aspect = 1
	}

	screen = Vec2{
		X: p.Center.X + v.X*s*aspect,
		Y: p.Center.Y - v.Y*s,
	}
	return screen, -z, true
}

// Scale returns the perspective scale factor at scene depth z, 0 when behind the near plane
func (p Projection) Scale(z float64) float64 {
	d := z + p.Distance
	if d <= NearPlane {
		return 0
	}
	return p.Focal / d
}
