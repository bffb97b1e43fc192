package raster

import (
	"github.com/lixenwraith/tinsel/terminal"
)

// RGB is terminal.RGB so segments carry canvas colors without conversion
type RGB = terminal.RGB

var RGBBlack = RGB{}

// channel truncates a float channel into 0-255
func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// RGBF builds a color from float channels, clamped and truncated
func RGBF(r, g, b float64) RGB {
	return RGB{R: channel(r), G: channel(g), B: channel(b)}
}

// zip combines two colors channel by channel
func zip(a, b RGB, op func(x, y uint8) uint8) RGB {
	return RGB{R: op(a.R, b.R), G: op(a.G, b.G), B: op(a.B, b.B)}
}

func saturate(x, y uint8) uint8 {
	if s := uint16(x) + uint16(y); s < 255 {
		return uint8(s)
	}
	return 255
}

func brighter(x, y uint8) uint8 { return max(x, y) }

// screen is 255 - (255-x)(255-y)/255 with a shift-based divide
func screen(x, y uint8) uint8 {
	p := (255 - int(x)) * (255 - int(y))
	return uint8(255 - (p+(p>>8)+1)>>8)
}

// Blend mixes src over c, alpha 0 keeps c and 1 yields src
func Blend(c, src RGB, alpha float64) RGB {
	switch {
	case alpha <= 0:
		return c
	case alpha >= 1:
		return src
	}
	return zip(c, src, func(d, s uint8) uint8 {
		return uint8(float64(s)*alpha + float64(d)*(1-alpha))
	})
}

// Add is saturating addition of src scaled by alpha
func Add(c, src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return c
	}
	if alpha < 1 {
		src = Scale(src, alpha)
	}
	return zip(c, src, saturate)
}

// Screen lightens c by src, mixed in by alpha
func Screen(c, src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return c
	}
	return Blend(c, zip(c, src, screen), alpha)
}

// Max keeps the brighter value per channel, mixed in by alpha
func Max(c, src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return c
	}
	return Blend(c, zip(c, src, brighter), alpha)
}

// Scale multiplies every channel by s
func Scale(c RGB, s float64) RGB {
	if s <= 0 {
		return RGBBlack
	}
	return RGBF(float64(c.R)*s, float64(c.G)*s, float64(c.B)*s)
}

// Lerp walks from a to b as t goes from 0 to 1
func Lerp(a, b RGB, t float64) RGB {
	return Blend(a, b, t)
}

// BlendMode selects how BlendPlot and GlowPlot combine a fragment with the pixel under it
type BlendMode uint8

const (
	BlendReplace BlendMode = iota
	BlendAlpha
	BlendAdd
	BlendScreen
	BlendMax
)

var blendFuncs = [...]func(dst, src RGB, alpha float64) RGB{
	BlendReplace: func(_, src RGB, _ float64) RGB { return src },
	BlendAlpha:   Blend,
	BlendAdd:     Add,
	BlendScreen:  Screen,
	BlendMax:     Max,
}

// Apply combines dst and src under mode; unknown modes replace
func Apply(mode BlendMode, dst, src RGB, alpha float64) RGB {
	if int(mode) >= len(blendFuncs) {
		return src
	}
	return blendFuncs[mode](dst, src, alpha)
}
