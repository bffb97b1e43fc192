package scene

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/lixenwraith/tinsel/raster"
	"github.com/lixenwraith/tinsel/vmath"
)

// LightsOptions configures ornament lights
type LightsOptions struct {
	Count    int
	Speed    float64 // flicker multiplier
	HueCycle bool    // slowly rotate each light through the color wheel
}

var DefaultLightsOptions = LightsOptions{Count: 40, Speed: 1.0}

// Palette is the ornament color set, cycled by light index
var Palette = []raster.RGB{
	fromNamed(colornames.Orangered),
	fromNamed(colornames.Lime),
	fromNamed(colornames.Dodgerblue),
	fromNamed(colornames.Gold),
	fromNamed(colornames.Magenta),
	fromNamed(colornames.Cyan),
	fromNamed(colornames.Darkorange),
	fromNamed(colornames.Mediumpurple),
}

func fromNamed(c color.RGBA) raster.RGB {
	return raster.RGB{R: c.R, G: c.G, B: c.B}
}

const (
	glowRadius    = 4.0
	glowIntensity = 0.5
	// lightBias pulls ornaments in front of the needles they sit on
	lightBias = 0.05
)

type light struct {
	f, theta, radius float64 // cone fraction, angle, surface multiplier
	color            raster.RGB
	flickerSpeed     float64
	flickerOffset    float64
	phaseOffset      float64
}

// Lights hangs flickering ornaments on a spiral around a Tree
type Lights struct {
	opts   LightsOptions
	tree   *Tree
	lights []light
}

// NewLights places Count lights along a spiral that winds three and a half times
// from the top of the cone to its base
func NewLights(opts LightsOptions, tree *Tree, rng *rand.Rand) *Lights {
	l := &Lights{opts: opts, tree: tree}
	n := max(opts.Count, 1)
	for i := 0; i < opts.Count; i++ {
		t := float64(i) / float64(n)
		l.lights = append(l.lights, light{
			f:             0.06 + t*0.88,
			theta:         t*7*math.Pi + rng.Float64()*0.5,
			radius:        1.02 + rng.Float64()*0.08,
			color:         Palette[i%len(Palette)],
			flickerSpeed:  1.5 + rng.Float64()*2.5,
			flickerOffset: rng.Float64() * 2 * math.Pi,
			phaseOffset:   rng.Float64() * 2 * math.Pi,
		})
	}
	return l
}

// flicker is in [0, 1]
func flicker(t, speed, offset, phase float64) float64 {
	return 0.5 + 0.5*(0.6*math.Sin(t*speed+offset)+0.4*math.Sin(t*speed*1.7+phase))
}

// hueShift rotates c around the HSV wheel by deg
func hueShift(c raster.RGB, deg float64) raster.RGB {
	h, s, v := toColorful(c).Hsv()
	return fromColorful(colorful.Hsv(math.Mod(h+deg, 360), s, v))
}

// Draw plots each light as a 2×2 blob and, for lights facing the viewer,
// a radial glow over the surrounding needles
func (l *Lights) Draw(p raster.Plotter, t, dt float64) {
	w, h := p.Size()
	if w <= 0 || h <= 0 || l.tree == nil {
		return
	}
	rig := l.tree.Options().RigAt(w, h, t)

	for i := range l.lights {
		lt := &l.lights[i]
		r := rig.ConeRadius(lt.f) * lt.radius
		y := rig.Apex - lt.f*treeHeight
		pos := rig.Place(vmath.Vec3{X: r * math.Cos(lt.theta), Y: y, Z: r * math.Sin(lt.theta)})
		screen, depth, ok := rig.Proj.Project(pos)
		if !ok {
			continue
		}

		k := flicker(t, lt.flickerSpeed*l.opts.Speed, lt.flickerOffset, lt.phaseOffset)
		c := lt.color
		if l.opts.HueCycle {
			c = hueShift(c, math.Mod(t*20+lt.phaseOffset*57.3, 360))
		}
		core := shade(c, 0.35+0.65*k)

		cx, cy := int(math.Floor(screen.X)), int(math.Floor(screen.Y))
		d := depth + lightBias
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				p.Plot(cx+dx, cy+dy, core, d)
			}
		}

		// Back-side lights are hidden by the cone, their glow would bleed through
		if pos.Z >= 0 || k < 0.2 {
			continue
		}
		reach := int(glowRadius)
		for gy := -reach; gy <= reach; gy++ {
			for gx := -reach; gx <= reach; gx++ {
				dist := math.Hypot(float64(gx), float64(gy))
				if dist >= glowRadius || (gx >= 0 && gx < 2 && gy >= 0 && gy < 2) {
					continue
				}
				intensity := (1 - dist/glowRadius) * glowIntensity * k
				raster.GlowPlot(p, cx+gx, cy+gy, c, raster.BlendMax, intensity)
			}
		}
	}
}
