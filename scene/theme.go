package scene

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/tinsel/raster"
)

// Theme is the fixed palette of the tree scene
type Theme struct {
	TreeDark  raster.RGB
	TreeLight raster.RGB
	Trunk     raster.RGB
	Star      raster.RGB
}

// DefaultTheme is the classic green tree with a golden star
var DefaultTheme = Theme{
	TreeDark:  raster.RGB{R: 20, G: 100, B: 40},
	TreeLight: raster.RGB{R: 60, G: 180, B: 80},
	Trunk:     raster.RGB{R: 101, G: 67, B: 33},
	Star:      raster.RGB{R: 255, G: 240, B: 100},
}

const gradientSteps = 64

// gradient is a precomputed perceptual ramp between two colors
type gradient [gradientSteps]raster.RGB

// newGradient blends in CIE-L*a*b* so the midtones stay saturated
func newGradient(from, to raster.RGB) *gradient {
	a := toColorful(from)
	b := toColorful(to)
	var g gradient
	for i := range g {
		t := float64(i) / float64(gradientSteps-1)
		g[i] = fromColorful(a.BlendLab(b, t))
	}
	return &g
}

// at samples the ramp, t clamped to [0, 1]
func (g *gradient) at(t float64) raster.RGB {
	i := int(t*float64(gradientSteps-1) + 0.5)
	if i < 0 {
		i = 0
	}
	if i >= gradientSteps {
		i = gradientSteps - 1
	}
	return g[i]
}

func toColorful(c raster.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) raster.RGB {
	r, g, b := c.Clamped().RGB255()
	return raster.RGB{R: r, G: g, B: b}
}

// shade multiplies a color by k, clamped and truncated
func shade(c raster.RGB, k float64) raster.RGB {
	return raster.RGBF(float64(c.R)*k, float64(c.G)*k, float64(c.B)*k)
}
