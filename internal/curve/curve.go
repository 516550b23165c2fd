// Package curve implements the piecewise-linear lookup tables used for
// engine torque, clutch engagement and similar calibration maps.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrTooFewPoints  = errors.New("curve: at least two points required")
	ErrNotIncreasing = errors.New("curve: x values must be strictly increasing")
	ErrNonFinite     = errors.New("curve: non-finite value")
)

type Point struct {
	X, Y float64
}

// Curve is an immutable table sorted by X. Lookups outside the domain clamp
// to the first or last point.
type Curve struct {
	points []Point
}

// New sorts the points by X. It does not validate; use Validate at load
// time.
func New(points ...Point) Curve {
	p := make([]Point, len(points))
	copy(p, points)
	sort.Slice(p, func(i, j int) bool { return p[i].X < p[j].X })
	return Curve{points: p}
}

// FromPairs builds a curve from the [x, y] pairs used in config files.
func FromPairs(pairs [][2]float64) Curve {
	p := make([]Point, len(pairs))
	for i, xy := range pairs {
		p[i] = Point{X: xy[0], Y: xy[1]}
	}
	return New(p...)
}

// Linear returns the two-point curve through (x0,y0) and (x1,y1).
func Linear(x0, y0, x1, y1 float64) Curve {
	return New(Point{x0, y0}, Point{x1, y1})
}

func (c Curve) Len() int { return len(c.points) }

func (c Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// Domain returns the smallest and largest X. An empty curve has domain [0, 0].
func (c Curve) Domain() (float64, float64) {
	if len(c.points) == 0 {
		return 0, 0
	}
	return c.points[0].X, c.points[len(c.points)-1].X
}

// Lookup clamps x into the domain and interpolates linearly. An empty curve
// returns 0, a single point curve returns its Y and NaN maps to the first Y.
func (c Curve) Lookup(x float64) float64 {
	n := len(c.points)
	switch {
	case n == 0:
		return 0
	case n == 1, math.IsNaN(x), x <= c.points[0].X:
		return c.points[0].Y
	case x >= c.points[n-1].X:
		return c.points[n-1].Y
	}

	i := sort.Search(n, func(i int) bool { return c.points[i].X >= x })
	lo, hi := c.points[i-1], c.points[i]
	span := hi.X - lo.X
	if span == 0 {
		return hi.Y
	}
	return lo.Y + (hi.Y-lo.Y)*(x-lo.X)/span
}

// Max returns the largest Y in the table.
func (c Curve) Max() float64 {
	best := 0.0
	for i, p := range c.points {
		if i == 0 || p.Y > best {
			best = p.Y
		}
	}
	return best
}

func (c Curve) Validate() error {
	if len(c.points) < 2 {
		return ErrTooFewPoints
	}
	for i, p := range c.points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("point %d: %w", i, ErrNonFinite)
		}
		if i > 0 && p.X <= c.points[i-1].X {
			return fmt.Errorf("point %d (x=%g): %w", i, p.X, ErrNotIncreasing)
		}
	}
	return nil
}
