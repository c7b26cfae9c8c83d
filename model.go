/*
 * model.go, part of gofit.
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
	"gonum.org/v1/gonum/mat"
)

// Shell is the angular type of a Gaussian primitive. S primitives are
// isotropic, c*exp(-z*r^2). P primitives carry the r^2 angular factor,
// c*r^2*exp(-z*r^2).
type Shell int

const (
	SShell Shell = iota
	PShell
)

func (s Shell) String() string {
	switch s {
	case SShell:
		return "S"
	case PShell:
		return "P"
	}
	return fmt.Sprintf("shell(%d)", int(s))
}

// GaussianModel is a parametrized density built from Gaussian primitives,
// evaluated on a fixed set of grid points. It is the contract between the
// density models and the optimizers in this package.
type GaussianModel interface {

	//Len returns the number of primitives, i.e. the length the coefficient
	//and exponent vectors must have.
	Len() int

	//NPoints returns the number of grid points the model is evaluated on.
	NPoints() int

	//Normalized reports whether each primitive carries its L1
	//normalization constant.
	Normalized() bool

	//Shell returns the angular type of the i-th primitive.
	Shell(i int) Shell

	//DistSq returns the squared distance of every grid point to the
	//center of the i-th primitive. The returned slice is a view; the
	//caller must not modify it.
	DistSq(i int) []float64

	//Basis fills dest with the unnormalized values of the i-th primitive
	//with the given exponent, i.e. exp(-z*d^2), times d^2 for P
	//primitives, and returns dest.
	Basis(i int, expon float64, dest []float64) []float64

	//Norm returns the normalization constant of the i-th primitive for
	//the given exponent, or 1 if the model is not normalized.
	Norm(i int, expon float64) float64

	//Evaluate returns the model density on the grid points.
	Evaluate(coeffs, expons []float64) ([]float64, error)

	//Derivative returns the NPoints x 2*Len matrix of partial derivatives
	//of the model density, with respect to each coefficient (first Len
	//columns) and each exponent (last Len columns).
	Derivative(coeffs, expons []float64) (*mat.Dense, error)
}

// normConstant is the L1 normalization of a single primitive: the constant
// that makes its 3-dimensional integral equal to one.
func normConstant(s Shell, expon float64) float64 {
	if s == PShell {
		return 2 * math.Pow(expon, 2.5) / (3 * math.Pow(math.Pi, 1.5))
	}
	return math.Pow(expon/math.Pi, 1.5)
}

// momentFactor is l + 3/2 for the shell, the constant of the first-moment
// condition used by the MBIS exponent update and by the normalized-model
// exponent derivative.
func momentFactor(s Shell) float64 {
	if s == PShell {
		return 2.5
	}
	return 1.5
}

func checkModelDims(m GaussianModel, coeffs, expons []float64, caller string) error {
	if len(coeffs) != len(expons) {
		return Error{fmt.Sprintf("gofit: %d coefficients given for %d exponents", len(coeffs), len(expons)), []string{caller}}
	}
	if len(coeffs) != m.Len() {
		return Error{fmt.Sprintf("gofit: %d parameters given for a model of %d primitives", len(coeffs), m.Len()), []string{caller}}
	}
	return nil
}

// modelEvaluate implements Evaluate for any GaussianModel.
func modelEvaluate(m GaussianModel, coeffs, expons []float64) ([]float64, error) {
	if err := checkModelDims(m, coeffs, expons, "Evaluate"); err != nil {
		return nil, err
	}
	dens := make([]float64, m.NPoints())
	g := make([]float64, m.NPoints())
	for i := 0; i < m.Len(); i++ {
		m.Basis(i, expons[i], g)
		floats.AddScaled(dens, coeffs[i]*m.Norm(i, expons[i]), g)
	}
	return dens, nil
}

// modelDerivative implements Derivative for any GaussianModel. The exponent
// partials are analytic: for a normalized primitive the exponent also enters
// through the normalization constant, which contributes the (l+3/2)/z term.
func modelDerivative(m GaussianModel, coeffs, expons []float64) (*mat.Dense, error) {
	if err := checkModelDims(m, coeffs, expons, "Derivative"); err != nil {
		return nil, err
	}
	k := m.Len()
	n := m.NPoints()
	deriv := mat.NewDense(n, 2*k, nil)
	g := make([]float64, n)
	for i := 0; i < k; i++ {
		m.Basis(i, expons[i], g)
		norm := m.Norm(i, expons[i])
		dsq := m.DistSq(i)
		nu := momentFactor(m.Shell(i))
		for j := 0; j < n; j++ {
			deriv.Set(j, i, norm*g[j])
			if m.Normalized() {
				deriv.Set(j, k+i, coeffs[i]*norm*g[j]*(nu/expons[i]-dsq[j]))
			} else {
				deriv.Set(j, k+i, -coeffs[i]*dsq[j]*g[j])
			}
		}
	}
	return deriv, nil
}

// AtomicGaussian is a single-center Gaussian density model on a radial grid:
// ns S-type primitives followed by np P-type primitives, all centered at the
// origin.
type AtomicGaussian struct {
	rsq        []float64
	ns, np     int
	normalized bool
}

// NewAtomicGaussian builds an atomic model over the given radial points.
// The points are copied.
func NewAtomicGaussian(points []float64, ns, np int, normalized bool) (*AtomicGaussian, error) {
	if ns < 0 || np < 0 || ns+np < 1 {
		return nil, Error{fmt.Sprintf("gofit: bad primitive counts ns=%d, np=%d", ns, np), []string{"NewAtomicGaussian"}}
	}
	if len(points) == 0 {
		return nil, Error{"gofit: no grid points given", []string{"NewAtomicGaussian"}}
	}
	a := &AtomicGaussian{ns: ns, np: np, normalized: normalized}
	a.rsq = make([]float64, len(points))
	for i, r := range points {
		a.rsq[i] = r * r
	}
	return a, nil
}

func (a *AtomicGaussian) Len() int         { return a.ns + a.np }
func (a *AtomicGaussian) NPoints() int     { return len(a.rsq) }
func (a *AtomicGaussian) Normalized() bool { return a.normalized }

func (a *AtomicGaussian) Shell(i int) Shell {
	if i >= a.ns {
		return PShell
	}
	return SShell
}

func (a *AtomicGaussian) DistSq(i int) []float64 { return a.rsq }

func (a *AtomicGaussian) Norm(i int, expon float64) float64 {
	if !a.normalized {
		return 1
	}
	return normConstant(a.Shell(i), expon)
}

func (a *AtomicGaussian) Basis(i int, expon float64, dest []float64) []float64 {
	p := a.Shell(i) == PShell
	for j, d2 := range a.rsq {
		dest[j] = math.Exp(-expon * d2)
		if p {
			dest[j] *= d2
		}
	}
	return dest
}

func (a *AtomicGaussian) Evaluate(coeffs, expons []float64) ([]float64, error) {
	return modelEvaluate(a, coeffs, expons)
}

func (a *AtomicGaussian) Derivative(coeffs, expons []float64) (*mat.Dense, error) {
	return modelDerivative(a, coeffs, expons)
}

// MolecularGaussian is a multi-center Gaussian density model: each center
// contributes its own S- and P-type primitives, evaluated as functions of
// the distance to that center and summed over centers. Primitives are
// ordered center by center, S before P within a center.
type MolecularGaussian struct {
	npoints    int
	shells     []Shell
	dsq        [][]float64 //per primitive, shared between primitives of a center
	normalized bool
}

// NewMolecularGaussian builds a molecular model on the points of a cubic
// grid. The centers matrix must have one row per center, with ns[i] and
// np[i] primitives on center i.
func NewMolecularGaussian(grid *CubicGrid, centers *mat.Dense, ns, np []int, normalized bool) (*MolecularGaussian, error) {
	nc, cols := centers.Dims()
	if cols != 3 {
		return nil, Error{fmt.Sprintf("gofit: centers matrix has %d columns, want 3", cols), []string{"NewMolecularGaussian"}}
	}
	if len(ns) != nc || len(np) != nc {
		return nil, Error{fmt.Sprintf("gofit: %d centers given, but ns has %d entries and np %d", nc, len(ns), len(np)), []string{"NewMolecularGaussian"}}
	}
	m := &MolecularGaussian{npoints: grid.NPoints(), normalized: normalized}
	for c := 0; c < nc; c++ {
		if ns[c] < 0 || np[c] < 0 || ns[c]+np[c] < 1 {
			return nil, Error{fmt.Sprintf("gofit: bad primitive counts ns=%d, np=%d on center %d", ns[c], np[c], c), []string{"NewMolecularGaussian"}}
		}
		cx, cy, cz := centers.At(c, 0), centers.At(c, 1), centers.At(c, 2)
		dsq := make([]float64, grid.NPoints())
		for j := range dsq {
			x, y, z := grid.Point(j)
			dsq[j] = (x-cx)*(x-cx) + (y-cy)*(y-cy) + (z-cz)*(z-cz)
		}
		for i := 0; i < ns[c]; i++ {
			m.shells = append(m.shells, SShell)
			m.dsq = append(m.dsq, dsq)
		}
		for i := 0; i < np[c]; i++ {
			m.shells = append(m.shells, PShell)
			m.dsq = append(m.dsq, dsq)
		}
	}
	return m, nil
}

func (m *MolecularGaussian) Len() int              { return len(m.shells) }
func (m *MolecularGaussian) NPoints() int          { return m.npoints }
func (m *MolecularGaussian) Normalized() bool      { return m.normalized }
func (m *MolecularGaussian) Shell(i int) Shell     { return m.shells[i] }
func (m *MolecularGaussian) DistSq(i int) []float64 { return m.dsq[i] }

func (m *MolecularGaussian) Norm(i int, expon float64) float64 {
	if !m.normalized {
		return 1
	}
	return normConstant(m.shells[i], expon)
}

func (m *MolecularGaussian) Basis(i int, expon float64, dest []float64) []float64 {
	p := m.shells[i] == PShell
	for j, d2 := range m.dsq[i] {
		dest[j] = math.Exp(-expon * d2)
		if p {
			dest[j] *= d2
		}
	}
	return dest
}

func (m *MolecularGaussian) Evaluate(coeffs, expons []float64) ([]float64, error) {
	return modelEvaluate(m, coeffs, expons)
}

func (m *MolecularGaussian) Derivative(coeffs, expons []float64) (*mat.Dense, error) {
	return modelDerivative(m, coeffs, expons)
}
