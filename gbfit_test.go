/*
 * gbfit_test.go, part of gofit.
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
)

func TestObjectiveGradient(Te *testing.T) {
	g, err := NewUniformRadialGrid(3001, 0, 12, true, Simpson)
	if err != nil {
		Te.Fatal(err)
	}
	m, err := NewAtomicGaussian(g.Points(), 2, 0, true)
	if err != nil {
		Te.Fatal(err)
	}
	dens, err := m.Evaluate([]float64{0.7, 0.3}, []float64{2.0, 0.6})
	if err != nil {
		Te.Fatal(err)
	}
	coeffs := []float64{0.5, 0.5}
	expons := []float64{1.5, 0.8}
	for _, measure := range []Measure{nil, LeastSquares{}} {
		f, err := NewGaussFit(g, dens, m, nil, measure)
		if err != nil {
			Te.Fatal(err)
		}
		grad, err := f.Gradient(coeffs, expons, Both)
		if err != nil {
			Te.Fatal(err)
		}
		if len(grad) != 4 {
			Te.Fatalf("gradient has %d entries", len(grad))
		}
		//finite differences of the objective
		h := 1e-6
		params := [][]float64{coeffs, expons}
		for which := 0; which < 2; which++ {
			for i := 0; i < 2; i++ {
				orig := params[which][i]
				params[which][i] = orig + h
				fp, err := f.Objective(coeffs, expons)
				if err != nil {
					Te.Fatal(err)
				}
				params[which][i] = orig - h
				fm, err := f.Objective(coeffs, expons)
				if err != nil {
					Te.Fatal(err)
				}
				params[which][i] = orig
				fd := (fp - fm) / (2 * h)
				got := grad[2*which+i]
				if math.Abs(got-fd) > 1e-5 {
					Te.Errorf("measure %T entry %d: analytic %v vs numeric %v", measure, 2*which+i, got, fd)
				}
			}
		}
	}
}

// At a perfect fit with the Kullback-Leibler measure the coefficient
// gradient of a normalized model is exactly minus one per primitive.
func TestGradientAtOptimum(Te *testing.T) {
	g, m, dens := gaussianReference(Te)
	f, err := NewGaussFit(g, dens, m, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	grad, err := f.Gradient([]float64{1}, []float64{1}, Coefficients)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(grad[0]+1) > 1e-8 {
		Te.Errorf("coefficient gradient at the optimum is %v, want -1", grad[0])
	}
	//and the exponent gradient vanishes
	grad, err = f.Gradient([]float64{1}, []float64{1}, Exponents)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(grad[0]) > 1e-8 {
		Te.Errorf("exponent gradient at the optimum is %v", grad[0])
	}
}

func TestGaussFitRecovery(Te *testing.T) {
	g, m, dens := gaussianReference(Te)
	f, err := NewGaussFit(g, dens, m, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := f.Run([]float64{0.1}, []float64{0.1}, Both, 1000)
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Converged {
		Te.Fatalf("did not converge: %v", res.Reason)
	}
	if math.Abs(res.Coeffs[0]-1) > 1e-5 || math.Abs(res.Expons[0]-1) > 1e-5 {
		Te.Errorf("recovered c=%v z=%v, want 1 1", res.Coeffs[0], res.Expons[0])
	}
	if math.Abs(res.Objective) > 1e-8 {
		Te.Errorf("final objective is %v", res.Objective)
	}
}

func TestGaussFitLeastSquares(Te *testing.T) {
	g, m, dens := gaussianReference(Te)
	f, err := NewGaussFit(g, dens, m, nil, LeastSquares{})
	if err != nil {
		Te.Fatal(err)
	}
	res, err := f.Run([]float64{0.5}, []float64{2}, Both, 1000)
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Converged {
		Te.Fatalf("did not converge: %v", res.Reason)
	}
	if math.Abs(res.Coeffs[0]-1) > 1e-4 || math.Abs(res.Expons[0]-1) > 1e-4 {
		Te.Errorf("recovered c=%v z=%v, want 1 1", res.Coeffs[0], res.Expons[0])
	}
}

func TestGaussFitValidation(Te *testing.T) {
	g, m, dens := gaussianReference(Te)
	if _, err := NewGaussFit(g, dens[:5], m, nil, nil); err == nil {
		Te.Error("expected an error for a mis-sized density")
	}
	if _, err := NewGaussFit(g, dens, m, []float64{1, 2}, nil); err == nil {
		Te.Error("expected an error for mis-sized weights")
	}
	f, err := NewGaussFit(g, dens, m, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := f.Run([]float64{0}, []float64{1}, Both, 100); err == nil {
		Te.Error("expected an error for a zero starting coefficient")
	}
	if _, err := f.Run([]float64{1}, []float64{1}, Both, 0); err == nil {
		Te.Error("expected an error for an empty iteration budget")
	}
	if _, err := f.Run([]float64{1, 1}, []float64{1, 1}, Both, 100); err == nil {
		Te.Error("expected an error for too many parameters")
	}
}
