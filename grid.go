/*
 * grid.go, part of gofit.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Quadrature selects the integration rule of a grid.
type Quadrature int

const (
	Trapezoidal Quadrature = iota
	Simpson
)

func (q Quadrature) String() string {
	switch q {
	case Trapezoidal:
		return "trapezoidal"
	case Simpson:
		return "simpson"
	}
	return fmt.Sprintf("quadrature(%d)", int(q))
}

// Grid is the interface for the integration grids used by the fitting
// machinery. Integrate must be a pure function of the grid and its input: it
// returns the same value no matter how many times it is called, and it never
// modifies f.
type Grid interface {
	//NPoints returns the number of grid points.
	NPoints() int

	//Integrate returns the integral of the point-sampled function f over
	//the grid, including whatever volume element the grid carries.
	Integrate(f []float64) (float64, error)
}

// RadialGrid is an ordered set of non-negative radial points together with a
// quadrature rule. If built as spherical, integration weights every integrand
// by the 4 pi r^2 volume element.
type RadialGrid struct {
	points    []float64
	volweight []float64 //4 pi r^2, or ones
	spherical bool
	quad      Quadrature
}

// NewRadialGrid builds a radial grid from the given points, which must be at
// least two, monotonically increasing and non-negative (three points for
// Simpson quadrature). The points are copied, so the caller keeps ownership
// of its slice.
func NewRadialGrid(points []float64, spherical bool, quad Quadrature) (*RadialGrid, error) {
	minpoints := 2
	if quad == Simpson {
		minpoints = 3
	}
	if len(points) < minpoints {
		return nil, Error{fmt.Sprintf("gofit: radial grid needs at least %d points, got %d", minpoints, len(points)), []string{"NewRadialGrid"}}
	}
	if points[0] < 0 {
		return nil, Error{"gofit: radial grid points must be non-negative", []string{"NewRadialGrid"}}
	}
	for i := 1; i < len(points); i++ {
		if points[i] <= points[i-1] {
			return nil, Error{fmt.Sprintf("gofit: radial grid points must increase monotonically (index %d)", i), []string{"NewRadialGrid"}}
		}
	}
	g := new(RadialGrid)
	g.points = make([]float64, len(points))
	copy(g.points, points)
	g.spherical = spherical
	g.quad = quad
	g.volweight = make([]float64, len(points))
	for i, r := range g.points {
		if spherical {
			g.volweight[i] = 4 * math.Pi * r * r
		} else {
			g.volweight[i] = 1
		}
	}
	return g, nil
}

// NewUniformRadialGrid builds a radial grid of n evenly spaced points from
// rmin to rmax, inclusive.
func NewUniformRadialGrid(n int, rmin, rmax float64, spherical bool, quad Quadrature) (*RadialGrid, error) {
	if n < 2 || rmax <= rmin || rmin < 0 {
		return nil, Error{fmt.Sprintf("gofit: bad uniform grid specification n=%d, rmin=%v, rmax=%v", n, rmin, rmax), []string{"NewUniformRadialGrid"}}
	}
	points := make([]float64, n)
	floats.Span(points, rmin, rmax)
	g, err := NewRadialGrid(points, spherical, quad)
	if err != nil {
		return nil, errDecorate(err, "NewUniformRadialGrid")
	}
	return g, nil
}

// Points returns a view of the radial points. The caller must not modify it.
func (g *RadialGrid) Points() []float64 {
	return g.points
}

func (g *RadialGrid) NPoints() int {
	return len(g.points)
}

// Spherical reports whether integration carries the 4 pi r^2 volume element.
func (g *RadialGrid) Spherical() bool {
	return g.spherical
}

// Integrate returns the integral of f over the grid with the quadrature rule
// given at construction, weighted by 4 pi r^2 if the grid is spherical.
func (g *RadialGrid) Integrate(f []float64) (float64, error) {
	if len(f) != len(g.points) {
		return 0, Error{fmt.Sprintf("gofit: integrand has %d points but the grid has %d", len(f), len(g.points)), []string{"RadialGrid.Integrate"}}
	}
	integrand := make([]float64, len(f))
	floats.MulTo(integrand, f, g.volweight)
	switch g.quad {
	case Simpson:
		return integrate.Simpsons(g.points, integrand), nil
	default:
		return integrate.Trapezoidal(g.points, integrand), nil
	}
}

// CubicGrid is a uniform 3-dimensional grid used by multi-center models.
// Points are stored row-major, x, y, z per point. Integration is a plain
// Riemann sum with the step^3 volume element, which is all the molecular
// model needs.
type CubicGrid struct {
	points []float64 //3*N, row-major
	step   float64
}

// NewCubicGrid builds a cubic grid spanning [min,max] on each axis with the
// given step.
func NewCubicGrid(min, max, step float64) (*CubicGrid, error) {
	if step <= 0 || max <= min {
		return nil, Error{fmt.Sprintf("gofit: bad cubic grid specification min=%v, max=%v, step=%v", min, max, step), []string{"NewCubicGrid"}}
	}
	naxis := int(math.Floor((max-min)/step)) + 1
	g := new(CubicGrid)
	g.step = step
	g.points = make([]float64, 0, 3*naxis*naxis*naxis)
	for i := 0; i < naxis; i++ {
		for j := 0; j < naxis; j++ {
			for k := 0; k < naxis; k++ {
				g.points = append(g.points, min+float64(i)*step, min+float64(j)*step, min+float64(k)*step)
			}
		}
	}
	return g, nil
}

func (g *CubicGrid) NPoints() int {
	return len(g.points) / 3
}

// Point returns the coordinates of the i-th grid point.
func (g *CubicGrid) Point(i int) (x, y, z float64) {
	return g.points[3*i], g.points[3*i+1], g.points[3*i+2]
}

// Integrate returns the integral of f over the grid.
func (g *CubicGrid) Integrate(f []float64) (float64, error) {
	if len(f) != g.NPoints() {
		return 0, Error{fmt.Sprintf("gofit: integrand has %d points but the grid has %d", len(f), g.NPoints()), []string{"CubicGrid.Integrate"}}
	}
	return g.step * g.step * g.step * floats.Sum(f), nil
}
