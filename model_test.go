/*
 * model_test.go, part of gofit.
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
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAtomicEvaluate(Te *testing.T) {
	points := []float64{0, 0.5, 1, 2}
	m, err := NewAtomicGaussian(points, 1, 1, true)
	if err != nil {
		Te.Fatal(err)
	}
	coeffs := []float64{1.3, 0.7}
	expons := []float64{2.0, 0.8}
	dens, err := m.Evaluate(coeffs, expons)
	if err != nil {
		Te.Fatal(err)
	}
	for j, r := range points {
		s := coeffs[0] * math.Pow(expons[0]/math.Pi, 1.5) * math.Exp(-expons[0]*r*r)
		p := coeffs[1] * 2 * math.Pow(expons[1], 2.5) / (3 * math.Pow(math.Pi, 1.5)) * r * r * math.Exp(-expons[1]*r*r)
		if math.Abs(dens[j]-s-p) > 1e-14 {
			Te.Errorf("r=%v: got %v, want %v", r, dens[j], s+p)
		}
	}
	if m.Shell(0) != SShell || m.Shell(1) != PShell {
		Te.Error("wrong shell assignment")
	}
}

// A normalized model must integrate to the sum of its coefficients.
func TestModelMass(Te *testing.T) {
	g, err := NewUniformRadialGrid(5001, 0, 15, true, Simpson)
	if err != nil {
		Te.Fatal(err)
	}
	m, err := NewAtomicGaussian(g.Points(), 2, 1, true)
	if err != nil {
		Te.Fatal(err)
	}
	coeffs := []float64{2.0, 0.5, 1.5}
	expons := []float64{3.0, 0.7, 1.2}
	dens, err := m.Evaluate(coeffs, expons)
	if err != nil {
		Te.Fatal(err)
	}
	mass, err := g.Integrate(dens)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(mass-4) > 1e-8 {
		Te.Errorf("model mass is %v, want 4", mass)
	}
}

func numericalDerivative(Te *testing.T, m GaussianModel, coeffs, expons []float64, which, i, point int) float64 {
	h := 1e-6
	cp := make([]float64, len(coeffs))
	ep := make([]float64, len(expons))
	eval := func(delta float64) float64 {
		copy(cp, coeffs)
		copy(ep, expons)
		if which == 0 {
			cp[i] += delta
		} else {
			ep[i] += delta
		}
		d, err := m.Evaluate(cp, ep)
		if err != nil {
			Te.Fatal(err)
		}
		return d[point]
	}
	return (eval(h) - eval(-h)) / (2 * h)
}

func TestDerivative(Te *testing.T) {
	points := []float64{0, 0.3, 0.9, 1.7, 3.2}
	coeffs := []float64{1.1, 0.6, 0.9}
	expons := []float64{2.4, 0.9, 1.5}
	for _, normalized := range []bool{true, false} {
		m, err := NewAtomicGaussian(points, 2, 1, normalized)
		if err != nil {
			Te.Fatal(err)
		}
		deriv, err := m.Derivative(coeffs, expons)
		if err != nil {
			Te.Fatal(err)
		}
		for i := 0; i < m.Len(); i++ {
			for j := range points {
				fd := numericalDerivative(Te, m, coeffs, expons, 0, i, j)
				if math.Abs(deriv.At(j, i)-fd) > 1e-6 {
					Te.Errorf("normalized=%v dc_%d at point %d: analytic %v vs numeric %v", normalized, i, j, deriv.At(j, i), fd)
				}
				fd = numericalDerivative(Te, m, coeffs, expons, 1, i, j)
				if math.Abs(deriv.At(j, m.Len()+i)-fd) > 1e-6 {
					Te.Errorf("normalized=%v dz_%d at point %d: analytic %v vs numeric %v", normalized, i, j, deriv.At(j, m.Len()+i), fd)
				}
			}
		}
	}
}

func TestModelValidation(Te *testing.T) {
	m, err := NewAtomicGaussian([]float64{0, 1}, 1, 0, true)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := m.Evaluate([]float64{1, 2}, []float64{1}); err == nil {
		Te.Error("expected an error for mismatched parameter vectors")
	}
	if _, err := m.Derivative([]float64{1, 2}, []float64{1, 2}); err == nil {
		Te.Error("expected an error for too many parameters")
	}
	if _, err := NewAtomicGaussian([]float64{0, 1}, 0, 0, true); err == nil {
		Te.Error("expected an error for an empty model")
	}
	if _, err := NewAtomicGaussian(nil, 1, 0, true); err == nil {
		Te.Error("expected an error for an empty grid")
	}
}

func TestMolecularGaussian(Te *testing.T) {
	g, err := NewCubicGrid(-6, 6, 0.2)
	if err != nil {
		Te.Fatal(err)
	}
	centers := mat.NewDense(2, 3, []float64{0, 0, 0, 0, 0, 1.4})
	m, err := NewMolecularGaussian(g, centers, []int{1, 1}, []int{0, 0}, true)
	if err != nil {
		Te.Fatal(err)
	}
	if m.Len() != 2 || m.NPoints() != g.NPoints() {
		Te.Fatalf("model is %dx%d", m.Len(), m.NPoints())
	}
	coeffs := []float64{1.0, 0.8}
	expons := []float64{1.3, 0.9}
	dens, err := m.Evaluate(coeffs, expons)
	if err != nil {
		Te.Fatal(err)
	}
	//hand evaluation at one point
	j := g.NPoints() / 2
	x, y, z := g.Point(j)
	d0 := x*x + y*y + z*z
	d1 := x*x + y*y + (z-1.4)*(z-1.4)
	want := coeffs[0]*math.Pow(expons[0]/math.Pi, 1.5)*math.Exp(-expons[0]*d0) +
		coeffs[1]*math.Pow(expons[1]/math.Pi, 1.5)*math.Exp(-expons[1]*d1)
	if math.Abs(dens[j]-want) > 1e-12 {
		Te.Errorf("got %v, want %v", dens[j], want)
	}
	//a normalized two-center model still integrates to the coefficient sum
	mass, err := g.Integrate(dens)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(mass-1.8) > 1e-6 {
		Te.Errorf("model mass is %v, want 1.8", mass)
	}
	if _, err := NewMolecularGaussian(g, centers, []int{1}, []int{0, 0}, true); err == nil {
		Te.Error("expected an error for mismatched center counts")
	}
	if _, err := NewMolecularGaussian(g, mat.NewDense(1, 2, nil), []int{1}, []int{0}, true); err == nil {
		Te.Error("expected an error for non-3D centers")
	}
}
