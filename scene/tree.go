package scene

import (
	"math"

	"github.com/lixenwraith/tinsel/raster"
	"github.com/lixenwraith/tinsel/vmath"
)

// TreeOptions configures the tree geometry and motion
type TreeOptions struct {
	Scale         float64 // base width as a fraction of screen width
	RotationSpeed float64 // radians per second around the vertical axis
	AnimSpeed     float64 // sway and shimmer multiplier
	Theme         Theme
}

var DefaultTreeOptions = TreeOptions{
	Scale:         0.16,
	RotationSpeed: 0.6,
	AnimSpeed:     1.0,
	Theme:         DefaultTheme,
}

// World-space tree proportions, camera sits cameraDistance in front of the origin
const (
	treeHeight     = 2.0
	cameraDistance = 4.0
	trunkRatio     = 1.0 / 7.0
	trunkRadius    = 0.11 // fraction of cone base radius
)

// Rig is the per-frame placement of the tree, shared by every layer attached to it
type Rig struct {
	Proj   vmath.Projection
	Radius float64 // cone base radius in world units
	Angle  float64 // rotation around Y
	Sway   float64 // tip offset in world units
	Apex   float64 // world Y of the cone tip
	Base   float64 // world Y of the cone base
}

// RigAt computes tree placement on a canvas of w × h pixels at time t
func (o TreeOptions) RigAt(w, h int, t float64) Rig {
	fw, fh := float64(w), float64(h)

	// Height covers 72% of the screen, centered at 58% down, 83% across
	pxHeight := fh * 0.72
	focal := pxHeight * cameraDistance / treeHeight

	// Base half-width spans Scale*0.75 of the canvas width
	radius := treeHeight * (o.Scale * 0.75 * fw) / pxHeight
	radius = vmath.Clamp(radius, 0.2, 1.6)

	speed := o.AnimSpeed
	sway := math.Sin(t*0.7*speed)*1.5 + math.Cos(t*0.27*speed)*0.6 + math.Sin(t*1.1*speed)*0.3

	return Rig{
		Proj: vmath.Projection{
			Focal:    focal,
			Distance: cameraDistance,
			Center:   vmath.Vec2{X: fw * 0.83, Y: fh * 0.58},
			AspectX:  1,
		},
		Radius: radius,
		Angle:  t * o.RotationSpeed,
		Sway:   sway * 0.04,
		Apex:   treeHeight / 2,
		Base:   -treeHeight / 2,
	}
}

// ConeRadius returns the cone radius at fraction f from apex (0) to base (1)
func (r Rig) ConeRadius(f float64) float64 {
	return r.Radius * f
}

// Place transforms a model-space point on the tree into view space, applying
// rotation and the sway that grows toward the tip
func (r Rig) Place(v vmath.Vec3) vmath.Vec3 {
	v = vmath.V3RotateY(v, r.Angle)
	up := (v.Y - r.Base) / (r.Apex - r.Base)
	v.X += r.Sway * vmath.Clamp(up, 0, 1)
	return v
}

// Tree draws a rotating cone of needles, a trunk, and a pulsing star on top
type Tree struct {
	opts     TreeOptions
	gradient *gradient
}

func NewTree(opts TreeOptions) *Tree {
	return &Tree{
		opts:     opts,
		gradient: newGradient(opts.Theme.TreeDark, opts.Theme.TreeLight),
	}
}

// Options returns the geometry options, used by layers that decorate the tree
func (tr *Tree) Options() TreeOptions {
	return tr.opts
}

// Draw renders the tree at time t
func (tr *Tree) Draw(p raster.Plotter, t, dt float64) {
	w, h := p.Size()
	if w <= 0 || h <= 0 {
		return
	}
	rig := tr.opts.RigAt(w, h, t)
	tr.drawCone(p, rig, t)
	tr.drawTrunk(p, rig)
	tr.drawStar(p, rig, t)
}

func (tr *Tree) drawCone(p raster.Plotter, rig Rig, t float64) {
	pxHeight := treeHeight * rig.Proj.Scale(0)
	rows := int(pxHeight*1.5) + 1
	slope := rig.Radius / treeHeight
	shimmer := t * 0.9 * tr.opts.AnimSpeed

	for i := 0; i <= rows; i++ {
		f := float64(i) / float64(rows)
		y := rig.Apex - f*treeHeight
		r := rig.ConeRadius(f)

		circumference := 2 * math.Pi * r * rig.Proj.Scale(0)
		steps := max(8, int(circumference*1.5))

		color := tr.gradient.at(vmath.Smoothstep(0, 1, 1-f))

		for j := 0; j < steps; j++ {
			theta := 2 * math.Pi * float64(j) / float64(steps)
			cos, sin := math.Cos(theta), math.Sin(theta)

			pos := rig.Place(vmath.Vec3{X: r * cos, Y: y, Z: r * sin})
			screen, depth, ok := rig.Proj.Project(pos)
			if !ok {
				continue
			}

			n := vmath.V3Normalize(vmath.V3RotateY(vmath.Vec3{X: cos, Y: slope, Z: sin}, rig.Angle))
			light := 0.45 + 0.45*(-n.X) + 0.25*(1-f) + 0.15*math.Sin(shimmer+f*4) + 0.2*(-n.Z)
			light = vmath.Clamp(light, 0.25, 1.0)

			// Needle bands spiral with the rotation
			variation := 1.0 + 0.1*math.Sin(theta*7+f*20+t*0.3)

			raster.PlotF(p, screen.X, screen.Y, shade(color, light*variation), depth)
		}
	}
}

func (tr *Tree) drawTrunk(p raster.Plotter, rig Rig) {
	trunkH := treeHeight * trunkRatio
	radius := rig.Radius * trunkRadius
	scale := rig.Proj.Scale(0)
	rows := int(trunkH*scale*1.5) + 1
	steps := max(8, int(2*math.Pi*radius*scale*2))

	for i := 0; i <= rows; i++ {
		y := rig.Base - trunkH*float64(i)/float64(rows)
		for j := 0; j < steps; j++ {
			theta := 2 * math.Pi * float64(j) / float64(steps)
			pos := rig.Place(vmath.Vec3{X: radius * math.Cos(theta), Y: y, Z: radius * math.Sin(theta)})
			screen, depth, ok := rig.Proj.Project(pos)
			if !ok {
				continue
			}
			n := vmath.V3RotateY(vmath.Vec3{X: math.Cos(theta), Z: math.Sin(theta)}, rig.Angle)
			shading := 0.55 + 0.45*(1-math.Abs(n.X))
			raster.PlotF(p, screen.X, screen.Y, shade(tr.opts.Theme.Trunk, shading), depth)
		}
	}
}

// StarPulse is the brightness of the tree-top star at time t, in [0.2, 1]
func StarPulse(t float64) float64 {
	return 0.6 + 0.4*math.Sin(t*3.5)
}

// PulsePeaked reports whether the star pulse crossed a maximum in (t0, t1]
func PulsePeaked(t0, t1 float64) bool {
	if t1 <= t0 {
		return false
	}
	phase := func(t float64) float64 {
		return math.Floor((t*3.5 - math.Pi/2) / (2 * math.Pi))
	}
	return phase(t1) > phase(t0)
}

// drawStar stamps a diamond at the apex, fading with Manhattan distance
func (tr *Tree) drawStar(p raster.Plotter, rig Rig, t float64) {
	top := rig.Place(vmath.Vec3{Y: rig.Apex})
	screen, depth, ok := rig.Proj.Project(top)
	if !ok {
		return
	}
	// Lift above the tip and in front of every needle
	cx := int(math.Floor(screen.X))
	cy := int(math.Floor(screen.Y)) - 2*raster.SubY
	depth += rig.Radius + 1

	star := shade(tr.opts.Theme.Star, StarPulse(t))
	const reach = 6
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			d := abs(dx) + abs(dy)
			if d > reach {
				continue
			}
			intensity := 1.0 - float64(d)/float64(reach+1)
			p.Plot(cx+dx, cy+dy, shade(star, intensity), depth)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
