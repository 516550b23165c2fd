package viz

import (
	"math"
	"strings"
)

// Braille cells are 2x4 dots; the bit for each dot, offset from 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a Width x Height character grid addressed in dots, i.e.
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPath fits a ground track (world x, z pairs) into the canvas keeping
// the aspect ratio, with +z pointing up the screen, and marks the last
// point with a small cross.
func (c *Canvas) DrawPath(xs, zs []float64) {
	n := min(len(xs), len(zs))
	if n == 0 {
		return
	}

	minX, maxX, minZ, maxZ := xs[0], xs[0], zs[0], zs[0]
	for i := 0; i < n; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minZ, maxZ = math.Min(minZ, zs[i]), math.Max(maxZ, zs[i])
	}

	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	span := math.Max(math.Max(maxX-minX, maxZ-minZ), 1)
	scale := math.Min(w, h) / span
	cx, cz := (minX+maxX)/2, (minZ+maxZ)/2

	project := func(x, z float64) (int, int) {
		return int(math.Round(w/2 + (x-cx)*scale)), int(math.Round(h/2 - (z-cz)*scale))
	}

	px, py := project(xs[0], zs[0])
	for i := 1; i < n; i++ {
		x, y := project(xs[i], zs[i])
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
	c.DrawLine(px-1, py, px+1, py)
	c.DrawLine(px, py-1, px, py+1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
