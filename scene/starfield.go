package scene

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/tinsel/raster"
	"github.com/lixenwraith/tinsel/vmath"
)

// StarDepth places the starfield behind everything else in the scene
const StarDepth = -1000.0

// StarfieldOptions configures a Starfield
type StarfieldOptions struct {
	Stars  int     // total star count, split evenly across layers
	Layers int     // parallax layers
	Speed  float64 // drift multiplier
}

// DefaultStarfieldOptions matches the classic scene
var DefaultStarfieldOptions = StarfieldOptions{Stars: 250, Layers: 4, Speed: 1.0}

type star struct {
	x, y          float64 // cell units
	z             float64 // 0 far, 1 near
	brightness    float64
	twinkleOffset float64
	twinkleSpeed  float64
	band          int
}

// starBands are base and tint pairs, picked by star hue quarter
var starBands = [4][2]raster.RGB{
	{{R: 60, G: 80, B: 120}, {R: 180, G: 200, B: 255}},
	{{R: 80, G: 60, B: 100}, {R: 255, G: 180, B: 230}},
	{{R: 60, G: 100, B: 80}, {R: 200, G: 255, B: 230}},
	{{R: 100, G: 80, B: 60}, {R: 255, G: 230, B: 180}},
}

// Starfield is a multi-layer twinkling star field with parallax drift
type Starfield struct {
	opts       StarfieldOptions
	rng        *rand.Rand
	stars      []star
	cols, rows int
	timeOffset float64
}

// NewStarfield creates a starfield; stars are placed on the first Draw
func NewStarfield(opts StarfieldOptions, rng *rand.Rand) *Starfield {
	if opts.Layers < 1 {
		opts.Layers = 1
	}
	return &Starfield{
		opts:       opts,
		rng:        rng,
		timeOffset: rng.Float64() * 1000,
	}
}

// regenerate scatters stars over a cols × rows cell area, 30% of them clustered
func (s *Starfield) regenerate(cols, rows int) {
	s.cols, s.rows = cols, rows
	s.stars = s.stars[:0]

	w, h := float64(cols), float64(rows)
	perLayer := s.opts.Stars / s.opts.Layers

	for layer := 0; layer < s.opts.Layers; layer++ {
		layerDepth := float64(layer) / float64(s.opts.Layers)
		for i := 0; i < perLayer; i++ {
			var x, y float64
			if s.rng.Float64() < 0.3 {
				x = s.rng.Float64()*w + s.rng.NormFloat64()*w*0.05
				y = s.rng.Float64()*h + s.rng.NormFloat64()*h*0.05
			} else {
				x = s.rng.Float64() * w
				y = s.rng.Float64() * h
			}
			s.stars = append(s.stars, star{
				x:             vmath.Clamp(x, 0, w),
				y:             vmath.Clamp(y, 0, h),
				z:             s.rng.Float64()*0.7 + layerDepth*0.3,
				brightness:    0.2 + s.rng.Float64()*0.8,
				twinkleOffset: s.rng.Float64() * 2 * math.Pi,
				twinkleSpeed:  0.5 + s.rng.Float64()*2.0,
				band:          s.rng.IntN(len(starBands)),
			})
		}
	}
}

// Draw adds one dot per star at the far star depth, overlapping stars brighten
func (s *Starfield) Draw(p raster.Plotter, t, dt float64) {
	pw, ph := p.Size()
	cols, rows := pw/raster.SubX, ph/raster.SubY
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols != s.cols || rows != s.rows || len(s.stars) == 0 {
		s.regenerate(cols, rows)
	}

	ta := t + s.timeOffset
	driftX := (math.Sin(ta*0.15)*2.0 + math.Cos(ta*0.07)*1.0 + math.Sin(ta*0.23)*0.5) * s.opts.Speed
	driftY := (math.Cos(ta*0.12)*1.5 + math.Sin(ta*0.09)*0.8 + math.Cos(ta*0.19)*0.4) * s.opts.Speed

	w, h := float64(cols), float64(rows)
	for i := range s.stars {
		st := &s.stars[i]
		parallax := 1.0 / (st.z*0.7 + 0.3)
		x := vmath.Wrap(st.x+driftX*parallax, 0, w)
		y := vmath.Wrap(st.y+driftY*parallax, 0, h)

		intensity := st.brightness * twinkle(ta, st.twinkleSpeed, st.twinkleOffset) * (0.3 + 0.7*st.z)
		base, tint := starBands[st.band][0], starBands[st.band][1]
		c := raster.RGBF(
			float64(base.R)+float64(tint.R)*intensity*0.6,
			float64(base.G)+float64(tint.G)*intensity*0.6,
			float64(base.B)+float64(tint.B)*intensity*0.6,
		)

		px, py := int(math.Floor(x*raster.SubX)), int(math.Floor(y*raster.SubY))
		raster.BlendPlot(p, px, py, c, raster.BlendAdd, 1, StarDepth+st.z)
	}
}

// twinkle is three detuned harmonics around 0.4
func twinkle(t, speed, offset float64) float64 {
	return 0.4 + 0.6*(0.5*math.Sin(t*speed+offset)+
		0.3*math.Sin(t*speed*1.7+offset*2)+
		0.2*math.Sin(t*speed*0.5+offset*3))
}
