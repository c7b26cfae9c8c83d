/*
 * gbfit.go, part of gofit.
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
	"gonum.org/v1/gonum/optimize"
)

// GaussFit minimizes a divergence measure between a Gaussian model and a
// reference density with a generic gradient-based minimizer, as an
// alternative to the self-consistent fixed-point scheme of KLSCF. The
// minimization itself is delegated to gonum/optimize through the usual
// objective+gradient interface; this type only supplies the analytic
// objective and gradient. The positivity bounds of the original constrained
// formulation (coefficients >= 0, exponents > 0) are enforced by minimizing
// over the logarithms of the parameters.
type GaussFit struct {
	grid    Grid
	dens    []float64
	weights []float64
	model   GaussianModel
	measure Measure
}

// FitResult is the outcome of a gradient-based fit.
type FitResult struct {
	Coeffs []float64
	Expons []float64
	//Final objective value.
	Objective float64
	//Gradient of the objective with respect to the optimized parameter
	//group(s), coefficients first, at the final point.
	Gradient  []float64
	Converged bool
	Reason    TermReason
}

// NewGaussFit builds a gradient-based fitter. A nil measure means
// Kullback-Leibler with the default mask; a nil weights slice means unit
// weights.
func NewGaussFit(grid Grid, dens []float64, model GaussianModel, weights []float64, measure Measure) (*GaussFit, error) {
	if len(dens) != grid.NPoints() {
		return nil, Error{fmt.Sprintf("gofit: density has %d points but the grid has %d", len(dens), grid.NPoints()), []string{"NewGaussFit"}}
	}
	if model.NPoints() != grid.NPoints() {
		return nil, Error{fmt.Sprintf("gofit: model evaluates on %d points but the grid has %d", model.NPoints(), grid.NPoints()), []string{"NewGaussFit"}}
	}
	if weights != nil && len(weights) != len(dens) {
		return nil, Error{fmt.Sprintf("gofit: %d weights given for %d points", len(weights), len(dens)), []string{"NewGaussFit"}}
	}
	f := &GaussFit{grid: grid, dens: dens, model: model, measure: measure}
	if f.measure == nil {
		f.measure = KLDivergence{Mask: DefaultMask}
	}
	f.weights = weights
	if f.weights == nil {
		f.weights = make([]float64, len(dens))
		for i := range f.weights {
			f.weights[i] = 1
		}
	}
	return f, nil
}

// Objective returns the integrated, weighted divergence between the
// reference density and the model evaluated with the given parameters.
func (f *GaussFit) Objective(coeffs, expons []float64) (float64, error) {
	model, err := f.model.Evaluate(coeffs, expons)
	if err != nil {
		return 0, errDecorate(err, "GaussFit.Objective")
	}
	v := f.measure.Value(f.dens, model)
	floats.Mul(v, f.weights)
	obj, err := f.grid.Integrate(v)
	if err != nil {
		return 0, errDecorate(err, "GaussFit.Objective")
	}
	return obj, nil
}

// Gradient returns the analytic gradient of the objective with respect to
// the selected parameter group(s), coefficients first. It chains the
// pointwise measure derivative through the model's parameter derivatives
// and integrates column by column.
func (f *GaussFit) Gradient(coeffs, expons []float64, target Target) ([]float64, error) {
	model, err := f.model.Evaluate(coeffs, expons)
	if err != nil {
		return nil, errDecorate(err, "GaussFit.Gradient")
	}
	dmat, err := f.model.Derivative(coeffs, expons)
	if err != nil {
		return nil, errDecorate(err, "GaussFit.Gradient")
	}
	dm := f.measure.Deriv(f.dens, model)
	floats.Mul(dm, f.weights)
	k := f.model.Len()
	var cols []int
	switch target {
	case Coefficients:
		cols = colRange(0, k)
	case Exponents:
		cols = colRange(k, 2*k)
	case Both:
		cols = colRange(0, 2*k)
	default:
		return nil, Error{fmt.Sprintf("gofit: unknown optimization target %v", target), []string{"GaussFit.Gradient"}}
	}
	grad := make([]float64, len(cols))
	integrand := make([]float64, f.grid.NPoints())
	for gi, c := range cols {
		for j := range integrand {
			integrand[j] = dm[j] * dmat.At(j, c)
		}
		grad[gi], err = f.grid.Integrate(integrand)
		if err != nil {
			return nil, errDecorate(err, "GaussFit.Gradient")
		}
	}
	return grad, nil
}

func colRange(from, to int) []int {
	r := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		r = append(r, i)
	}
	return r
}

// Run minimizes the objective starting from c0 and e0, optimizing the
// parameter group(s) selected by target and holding the other fixed. All
// starting values must be strictly positive, since the search runs in
// logarithmic space. Termination without convergence is soft, reported in
// the result.
func (f *GaussFit) Run(c0, e0 []float64, target Target, maxiter int) (*FitResult, error) {
	if err := checkModelDims(f.model, c0, e0, "GaussFit.Run"); err != nil {
		return nil, err
	}
	if maxiter < 1 {
		return nil, Error{fmt.Sprintf("gofit: bad iteration budget %d", maxiter), []string{"GaussFit.Run"}}
	}
	for i := range c0 {
		if c0[i] <= 0 || e0[i] <= 0 {
			return nil, Error{fmt.Sprintf("gofit: initial parameters must be positive, got c=%v z=%v at %d", c0[i], e0[i], i), []string{"GaussFit.Run"}}
		}
	}
	k := f.model.Len()
	cs := make([]float64, k)
	copy(cs, c0)
	es := make([]float64, k)
	copy(es, e0)
	//unpack maps a point of the log-space search onto the full parameter
	//vectors, leaving the fixed group alone.
	unpack := func(y []float64) {
		switch target {
		case Coefficients:
			expOf(y, cs)
		case Exponents:
			expOf(y, es)
		default:
			expOf(y[:k], cs)
			expOf(y[k:], es)
		}
	}
	var y0 []float64
	switch target {
	case Coefficients:
		y0 = logOf(c0)
	case Exponents:
		y0 = logOf(e0)
	case Both:
		y0 = append(logOf(c0), logOf(e0)...)
	default:
		return nil, Error{fmt.Sprintf("gofit: unknown optimization target %v", target), []string{"GaussFit.Run"}}
	}
	problem := optimize.Problem{
		Func: func(y []float64) float64 {
			unpack(y)
			obj, err := f.Objective(cs, es)
			if err != nil {
				panic(err.Error()) //dimensions were validated, can't happen
			}
			return obj
		},
		Grad: func(grad, y []float64) {
			unpack(y)
			gx, err := f.Gradient(cs, es, target)
			if err != nil {
				panic(err.Error()) //same as above
			}
			//chain rule of the log transform: dF/dy = dF/dx * x
			for i := range grad {
				grad[i] = gx[i] * math.Exp(y[i])
			}
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   maxiter,
		GradientThreshold: 1e-10,
		Converger:         &optimize.FunctionConverge{Absolute: 1e-13, Iterations: 50},
	}
	sol, err := optimize.Minimize(problem, y0, settings, &optimize.LBFGS{})
	if sol == nil {
		return nil, errDecorate(err, "GaussFit.Run")
	}
	unpack(sol.X)
	res := new(FitResult)
	res.Coeffs = cs
	res.Expons = es
	res.Objective = sol.F
	grad, gerr := f.Gradient(cs, es, target)
	if gerr != nil {
		return nil, errDecorate(gerr, "GaussFit.Run")
	}
	res.Gradient = grad
	switch {
	case err != nil:
		res.Reason = SolverFailure
	case sol.Status == optimize.IterationLimit:
		res.Reason = MaxIterations
	default:
		res.Reason = Tolerance
		res.Converged = true
	}
	return res, nil
}

func logOf(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = math.Log(v)
	}
	return y
}

func expOf(y, dest []float64) {
	for i, v := range y {
		dest[i] = math.Exp(v)
	}
}
