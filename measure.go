/*
 * measure.go, part of gofit.
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

	"gonum.org/v1/gonum/stat"
)

// DefaultMask is the default clamp applied to the model density before it
// divides the reference density in the Kullback-Leibler measure. The clamp
// changes the numeric behavior of the objective near zero, so it is a
// visible, configurable field of KLDivergence rather than something the
// measure infers.
const DefaultMask = 1e-12

// Measure is a pointwise divergence between a reference density and a model
// density. Value returns the integrand of the scalar objective; Deriv
// returns its partial derivative with respect to the model density. Both are
// evaluated point by point and integrated by the caller on its grid, with
// whatever weights the caller carries.
type Measure interface {
	Value(dens, model []float64) []float64
	Deriv(dens, model []float64) []float64
}

// LeastSquares is the squared-difference measure, (dens-model)^2.
type LeastSquares struct{}

func (LeastSquares) Value(dens, model []float64) []float64 {
	v := make([]float64, len(dens))
	for i := range dens {
		d := dens[i] - model[i]
		v[i] = d * d
	}
	return v
}

func (LeastSquares) Deriv(dens, model []float64) []float64 {
	v := make([]float64, len(dens))
	for i := range dens {
		v[i] = -2 * (dens[i] - model[i])
	}
	return v
}

// KLDivergence is the Kullback-Leibler measure, dens*ln(dens/model). Before
// dividing, the model density is floored at Mask, so the measure never
// divides by, or takes the logarithm of, a vanishing model. Points where the
// reference density is not positive contribute zero.
type KLDivergence struct {
	Mask float64
}

func (kl KLDivergence) clamp(m float64) float64 {
	if m <= kl.Mask {
		return kl.Mask
	}
	return m
}

func (kl KLDivergence) Value(dens, model []float64) []float64 {
	v := make([]float64, len(dens))
	for i := range dens {
		if dens[i] <= 0 {
			continue
		}
		v[i] = dens[i] * math.Log(dens[i]/kl.clamp(model[i]))
	}
	return v
}

func (kl KLDivergence) Deriv(dens, model []float64) []float64 {
	v := make([]float64, len(dens))
	for i := range dens {
		v[i] = -dens[i] / kl.clamp(model[i])
	}
	return v
}

// GoodnessOfFit summarizes how well a model density reproduces a reference
// density on a grid.
type GoodnessOfFit struct {
	ModelMass    float64 //integral of the model density
	L1Error      float64 //integral of the absolute difference
	LeastSquares float64 //integral of the squared difference
	MaxDiff      float64 //largest pointwise absolute difference
	RMSD         float64 //root mean squared pointwise difference
}

// Goodness computes the fit diagnostics for the given reference and model
// densities on a grid.
func Goodness(g Grid, dens, model []float64) (*GoodnessOfFit, error) {
	gof := new(GoodnessOfFit)
	var err error
	gof.ModelMass, err = g.Integrate(model)
	if err != nil {
		return nil, errDecorate(err, "Goodness")
	}
	diff := make([]float64, len(dens))
	sq := make([]float64, len(dens))
	for i := range dens {
		diff[i] = math.Abs(dens[i] - model[i])
		sq[i] = diff[i] * diff[i]
		if diff[i] > gof.MaxDiff {
			gof.MaxDiff = diff[i]
		}
	}
	gof.L1Error, err = g.Integrate(diff)
	if err != nil {
		return nil, errDecorate(err, "Goodness")
	}
	gof.LeastSquares, err = g.Integrate(sq)
	if err != nil {
		return nil, errDecorate(err, "Goodness")
	}
	gof.RMSD = math.Sqrt(stat.Mean(sq, nil))
	return gof, nil
}
