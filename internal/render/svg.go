package render

import (
	"fmt"
	"strings"
)

// SVG writes the canvas as one circle per lit braille dot, coloured by the
// cell's tint.
func (c *Canvas) SVG(scale float64) string {
	if c == nil {
		return ""
	}
	width := float64(c.SubWidth()) * scale
	height := float64(c.SubHeight()) * scale
	r := scale * 0.4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := c.Grid[row][col] - brailleBlank
			if pattern == 0 {
				continue
			}
			fill := c.Tint[row][col].Clamped().Hex()
			baseX := float64(col*2) * scale
			baseY := float64(row*4) * scale
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, r, fill)
				}
			}
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SVG renders the last drawn frame.
func (t *Terminal) SVG(scale float64) string { return t.canvas.SVG(scale) }
