package export

import (
	"fmt"
	"strings"
)

// DensitySVG renders a stationary density curve as an SVG path over its
// grid. Returns an empty string for fewer than two points.
func DensitySVG(x, density []float64, width, height int, strokeColor string) string {
	if len(x) < 2 || len(x) != len(density) {
		return ""
	}

	minX, maxX := x[0], x[len(x)-1]
	minY, maxY := density[0], density[0]
	for _, v := range density {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range x {
		px := (x[i] - minX) / rangeX * float64(width)
		py := float64(height) - (density[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
