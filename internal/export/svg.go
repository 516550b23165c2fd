// Package export renders telemetry as standalone SVG files.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/drivesim/internal/analysis"
)

// TrajectoryToSVG draws points as one polyline with a dot at the start and
// a ring at the end. With equalAspect set both axes share one scale, which
// is what a ground track (x against z) needs.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string, equalAspect bool) string {
	if len(points) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	if equalAspect {
		rangeX = math.Max(rangeX, rangeY*float64(width)/float64(height))
		rangeY = rangeX * float64(height) / float64(width)
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		minX, minY = cx-rangeX/2, cy-rangeY/2
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	project := func(p analysis.Point) (float64, float64) {
		return (p.X - minX) / rangeX * float64(width), float64(height) - (p.Y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x, y := project(p)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	sx, sy := project(points[0])
	ex, ey := project(points[len(points)-1])
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", sx, sy, strokeColor)
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"none\" stroke=\"%s\"/>\n", ex, ey, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

// TrackSVG draws the ground track from the x and z position columns.
func TrackSVG(xs, zs []float64, size int) string {
	return TrajectoryToSVG(analysis.NewPhasePortrait("x", xs, "z", zs).Points, size, size, "#00ff88", true)
}

// PortraitSVG draws a phase portrait with independent axis scales.
func PortraitSVG(p *analysis.PhasePortrait2D, width, height int) string {
	if p == nil {
		return ""
	}
	return TrajectoryToSVG(p.Points, width, height, "#00ccff", false)
}
