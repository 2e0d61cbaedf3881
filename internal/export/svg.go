// Package export renders sampled trajectories as standalone SVG files.
package export

import (
	"fmt"
	"os"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePoints pairs two state components of a sampled trajectory for a
// phase portrait.
func PhasePoints(states [][]float64, xIdx, yIdx int) []Point {
	points := make([]Point, 0, len(states))
	for _, s := range states {
		if xIdx >= len(s) || yIdx >= len(s) {
			continue
		}
		points = append(points, Point{X: s[xIdx], Y: s[yIdx]})
	}
	return points
}

// TimeSeriesPoints pairs time with one state component.
func TimeSeriesPoints(times []float64, states [][]float64, idx int) []Point {
	points := make([]Point, 0, len(times))
	for i, t := range times {
		if i >= len(states) || idx >= len(states[i]) {
			continue
		}
		points = append(points, Point{X: t, Y: states[i][idx]})
	}
	return points
}

// TrajectoryToSVG creates an SVG polyline from trajectory data
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteSVG renders points and writes the file.
func WriteSVG(path string, points []Point, width, height int, strokeColor string) error {
	svg := TrajectoryToSVG(points, width, height, strokeColor)
	if svg == "" {
		return fmt.Errorf("not enough points for an svg plot: %d", len(points))
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
