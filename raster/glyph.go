package raster

// BrailleBase is the empty braille pattern; dot bits are OR'd onto it
const BrailleBase rune = 0x2800

// dotBits maps sub-pixel offsets [dy][dx] inside a cell to braille dot bits
//
//	1 4      0x01 0x08
//	2 5  ->  0x02 0x10
//	3 6      0x04 0x20
//	7 8      0x40 0x80
var dotBits = [SubY][SubX]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Rasterize reduces the canvas into g, one braille glyph per cell
// Each drawn sample sets its dot bit and contributes to the cell color, which is
// the per-channel integer sum divided by the sample count, truncated. A cell with no
// drawn samples is blank. Samples past the canvas edge are skipped
func Rasterize(c *Canvas, g *Grid) {
	for cy := 0; cy < g.height; cy++ {
		py0 := cy * SubY
		row := g.cells[cy*g.width : (cy+1)*g.width]
		for cx := range row {
			row[cx] = rasterizeCell(c, cx*SubX, py0)
		}
	}
}

func rasterizeCell(c *Canvas, px0, py0 int) Cell {
	var bits rune
	var sumR, sumG, sumB, count int

	for dy := 0; dy < SubY; dy++ {
		py := py0 + dy
		if py >= c.height {
			break
		}
		base := py * c.width
		for dx := 0; dx < SubX; dx++ {
			px := px0 + dx
			if px >= c.width {
				break
			}
			p := &c.pix[base+px]
			if p.Empty() {
				continue
			}
			bits |= dotBits[dy][dx]
			sumR += int(p.Color.R)
			sumG += int(p.Color.G)
			sumB += int(p.Color.B)
			count++
		}
	}

	if count == 0 {
		return Cell{}
	}
	return Cell{
		Glyph: BrailleBase | bits,
		Color: RGB{
			R: uint8(sumR / count),
			G: uint8(sumG / count),
			B: uint8(sumB / count),
		},
	}
}
