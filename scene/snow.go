package scene

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/tinsel/raster"
	"github.com/lixenwraith/tinsel/vmath"
)

// SnowOptions configures a Snow layer
type SnowOptions struct {
	Flakes int
	Speed  float64
}

var DefaultSnowOptions = SnowOptions{Flakes: 120, Speed: 1.0}

// Snow depths span in front of and behind the tree
const (
	snowNear = -2.0
	snowFar  = -6.0
)

// wrapMargin lets flakes leave the screen fully before reappearing
const wrapMargin = 3.0

type flake struct {
	x, y   float64 // cell units
	vx, vy float64
	size   float64
}

// Snow is a wind-driven particle field
type Snow struct {
	opts       SnowOptions
	rng        *rand.Rand
	flakes     []flake
	cols, rows int
}

func NewSnow(opts SnowOptions, rng *rand.Rand) *Snow {
	return &Snow{opts: opts, rng: rng}
}

func (s *Snow) regenerate(cols, rows int) {
	s.cols, s.rows = cols, rows
	s.flakes = s.flakes[:0]
	for i := 0; i < s.opts.Flakes; i++ {
		s.flakes = append(s.flakes, flake{
			x:    s.rng.Float64() * float64(cols),
			y:    s.rng.Float64() * float64(rows),
			vx:   s.uniform(-0.4, 0.4),
			vy:   s.uniform(0.4, 1.8),
			size: s.uniform(0.3, 1.2),
		})
	}
}

func (s *Snow) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Wind is the shared gust strength at time t
func Wind(t, speed float64) float64 {
	return (math.Sin(t*0.4)*0.9 + math.Sin(t*0.17)*0.4 + math.Sin(t*0.71)*0.2) * speed
}

// step advances every flake by dt seconds
func (s *Snow) step(t, dt float64) {
	wind := Wind(t, s.opts.Speed)
	w, h := float64(s.cols), float64(s.rows)
	move := dt * 12 * s.opts.Speed

	for i := range s.flakes {
		f := &s.flakes[i]
		f.vx = vmath.Clamp(f.vx+wind*0.04, -2.0, 2.0)
		f.x += f.vx * move
		f.y += f.vy * move

		if f.y > h+wrapMargin {
			f.y = -wrapMargin
			f.x = s.rng.Float64() * w
			f.vx = s.uniform(-0.4, 0.4)
			f.vy = s.uniform(0.4, 1.8)
		}
		if f.x < -wrapMargin {
			f.x = w + wrapMargin
		} else if f.x > w+wrapMargin {
			f.x = -wrapMargin
		}
	}
}

// depth maps flake size to scene depth, bigger flakes are nearer
func (f *flake) depth() float64 {
	return vmath.Lerp(snowFar, snowNear, (f.size-0.3)/0.9)
}

// Flakes are translucent over whatever they cross; big ones add a screened halo
const (
	flakeAlpha = 0.75
	haloAlpha  = 0.35
)

// Draw advances the simulation and blends each flake over the scene behind it
func (s *Snow) Draw(p raster.Plotter, t, dt float64) {
	pw, ph := p.Size()
	cols, rows := pw/raster.SubX, ph/raster.SubY
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols != s.cols || rows != s.rows || len(s.flakes) == 0 {
		s.regenerate(cols, rows)
	}
	s.step(t, dt)

	for i := range s.flakes {
		f := &s.flakes[i]
		px := int(math.Floor(f.x * raster.SubX))
		py := int(math.Floor(f.y * raster.SubY))

		b := 180 + f.size*75
		d := f.depth()
		cover(p, px, py, raster.RGBF(b, b, b+40), raster.BlendAlpha, flakeAlpha, d)

		if f.size <= 0.7 {
			continue
		}
		g := b * 0.4
		glow := raster.RGBF(g, g, g+20)
		for _, n := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			cover(p, px+n[0], py+n[1], glow, raster.BlendScreen, haloAlpha, d)
		}
	}
}

// cover blends c onto (x, y) unless a nearer pixel already hides that spot
func cover(p raster.Plotter, x, y int, c raster.RGB, mode raster.BlendMode, alpha, depth float64) {
	if cur, ok := p.At(x, y); ok && cur.Depth > depth {
		return
	}
	raster.BlendPlot(p, x, y, c, mode, alpha, depth)
}
