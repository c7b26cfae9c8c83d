/*
 * scf.go, part of gofit.
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
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Target selects which parameter group an optimizer updates. The group that
// is not selected is held fixed at its last value, it is neither updated nor
// reset.
type Target int

const (
	Coefficients Target = iota
	Exponents
	Both
)

func (t Target) String() string {
	switch t {
	case Coefficients:
		return "coefficients"
	case Exponents:
		return "exponents"
	case Both:
		return "coefficients+exponents"
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// TermReason says why an optimization loop stopped. Exhausting the iteration
// budget is not an error: it is reported here and the caller decides whether
// to treat it as fatal.
type TermReason int

const (
	//All requested tolerances were met.
	Tolerance TermReason = iota
	//The iteration budget ran out before the tolerances were met.
	MaxIterations
	//The external minimizer stopped without meeting its criteria.
	SolverFailure
)

func (r TermReason) String() string {
	switch r {
	case Tolerance:
		return "converged"
	case MaxIterations:
		return "maximum iterations exceeded"
	case SolverFailure:
		return "solver failure"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// SCFOptions controls the self-consistent fitting loop.
type SCFOptions struct {
	MaxIterations int
	//The loop stops when the objective change and the largest step of
	//each requested parameter group all fall below their tolerances.
	ObjectiveTol float64
	CoeffTol     float64
	ExponTol     float64
	//If true, per-iteration diagnostics go to the standard logger.
	Verbose bool
}

// DefaultSCFOptions returns the options used when the caller has no opinion.
func DefaultSCFOptions() SCFOptions {
	return SCFOptions{
		MaxIterations: 500,
		ObjectiveTol:  1e-10,
		CoeffTol:      1e-8,
		ExponTol:      1e-8,
	}
}

// SCFResult is the outcome of a self-consistent fit. The three per-iteration
// sequences are parallel: element i of each describes the model after
// iteration i.
type SCFResult struct {
	Coeffs []float64
	Expons []float64
	//Objective value timeline.
	Objective []float64
	//Integrated model mass per iteration.
	ModelMass []float64
	//Integrated absolute error per iteration.
	L1Error    []float64
	Iterations int
	Converged  bool
	Reason     TermReason
}

// KLSCF fits a normalized Gaussian model to a reference density under the
// Kullback-Leibler measure with the MBIS fixed-point scheme: coefficients
// and exponents are refined with closed-form multiplicative updates until
// self-consistency. Starting from non-negative coefficients, the updates
// keep them non-negative, which preserves the density interpretation of the
// model.
type KLSCF struct {
	grid    Grid
	dens    []float64
	weights []float64
	model   GaussianModel
	measure KLDivergence
	lambda  float64
}

// NewKLSCF builds a self-consistent fitter for the given reference density
// on a grid. The model must be normalized; the closed-form updates rely on
// each primitive integrating to its coefficient. A nil weights slice means
// unit weights. mask is the clamp applied to the model density before
// divisions; pass a non-positive value to get DefaultMask.
func NewKLSCF(grid Grid, dens []float64, model GaussianModel, weights []float64, mask float64) (*KLSCF, error) {
	if len(dens) != grid.NPoints() {
		return nil, Error{fmt.Sprintf("gofit: density has %d points but the grid has %d", len(dens), grid.NPoints()), []string{"NewKLSCF"}}
	}
	if model.NPoints() != grid.NPoints() {
		return nil, Error{fmt.Sprintf("gofit: model evaluates on %d points but the grid has %d", model.NPoints(), grid.NPoints()), []string{"NewKLSCF"}}
	}
	if !model.Normalized() {
		return nil, Error{"gofit: the multiplicative updates need a normalized model", []string{"NewKLSCF"}}
	}
	if weights != nil && len(weights) != len(dens) {
		return nil, Error{fmt.Sprintf("gofit: %d weights given for %d points", len(weights), len(dens)), []string{"NewKLSCF"}}
	}
	if mask <= 0 {
		mask = DefaultMask
	}
	s := &KLSCF{grid: grid, dens: dens, model: model, measure: KLDivergence{Mask: mask}}
	s.weights = weights
	if s.weights == nil {
		s.weights = make([]float64, len(dens))
		for i := range s.weights {
			s.weights[i] = 1
		}
	}
	var err error
	s.lambda, err = s.lagrangeMultiplier()
	if err != nil {
		return nil, errDecorate(err, "NewKLSCF")
	}
	return s, nil
}

// LagrangeMultiplier returns the multiplier of the mass-conservation
// constraint: the ratio of the weighted to the unweighted integral of the
// reference density. With unit weights it is one, and the converged model
// mass equals the reference mass.
func (s *KLSCF) LagrangeMultiplier() float64 {
	return s.lambda
}

func (s *KLSCF) lagrangeMultiplier() (float64, error) {
	wdens := make([]float64, len(s.dens))
	floats.MulTo(wdens, s.weights, s.dens)
	num, err := s.grid.Integrate(wdens)
	if err != nil {
		return 0, err
	}
	den, err := s.grid.Integrate(s.dens)
	if err != nil {
		return 0, err
	}
	lm := num / den
	if lm == 0 || math.IsNaN(lm) || math.IsInf(lm, 0) {
		return 0, Error{fmt.Sprintf("gofit: ill-defined Lagrange multiplier %v", lm), []string{"lagrangeMultiplier"}}
	}
	return lm, nil
}

// ratio fills dest with weights*dens/model, the model floored at the mask.
func (s *KLSCF) ratio(model, dest []float64) []float64 {
	for i := range dest {
		dest[i] = s.weights[i] * s.dens[i] / s.measure.clamp(model[i])
	}
	return dest
}

// updateCoeffs applies the multiplicative coefficient update in place:
// c_i <- c_i * N(z_i) * integral(w * dens/model * g_i) / lambda. With a
// non-negative starting point the update cannot produce a negative
// coefficient, since every factor is non-negative.
func (s *KLSCF) updateCoeffs(coeffs, expons, ratio, g []float64) error {
	for i := range coeffs {
		s.model.Basis(i, expons[i], g)
		floats.Mul(g, ratio)
		integral, err := s.grid.Integrate(g)
		if err != nil {
			return errDecorate(err, "updateCoeffs")
		}
		coeffs[i] *= s.model.Norm(i, expons[i]) * integral / s.lambda
	}
	return nil
}

// updateExpons applies the closed-form exponent update in place: the new
// exponent matches the second moment of the ratio-weighted primitive to the
// target second moment, z_i <- (l+3/2) * integral(w*dens/model * g_i) /
// integral(w*dens/model * d^2 * g_i). A denominator that vanishes, which can
// only happen when the masked ratio has no support left on the primitive,
// leaves that exponent untouched.
func (s *KLSCF) updateExpons(coeffs, expons, ratio, g []float64) error {
	g2 := make([]float64, len(g))
	for i := range expons {
		s.model.Basis(i, expons[i], g)
		floats.Mul(g, ratio)
		num, err := s.grid.Integrate(g)
		if err != nil {
			return errDecorate(err, "updateExpons")
		}
		floats.MulTo(g2, g, s.model.DistSq(i))
		den, err := s.grid.Integrate(g2)
		if err != nil {
			return errDecorate(err, "updateExpons")
		}
		if den <= 0 || math.IsNaN(den) {
			log.Printf("gofit: exponent %d update skipped, vanishing denominator", i)
			continue
		}
		expons[i] = momentFactor(s.model.Shell(i)) * num / den
	}
	return nil
}

// objective integrates the weighted Kullback-Leibler integrand.
func (s *KLSCF) objective(model []float64) (float64, error) {
	v := s.measure.Value(s.dens, model)
	floats.Mul(v, s.weights)
	return s.grid.Integrate(v)
}

// Run iterates the multiplicative updates starting from c0 and e0 until the
// requested tolerances are met or the iteration budget runs out. Both
// terminations are soft: they are reported in the result, and the error
// return only covers invalid input. For the multiplicative path every
// starting coefficient and exponent must be strictly positive.
func (s *KLSCF) Run(c0, e0 []float64, target Target, opt SCFOptions) (*SCFResult, error) {
	if err := checkModelDims(s.model, c0, e0, "KLSCF.Run"); err != nil {
		return nil, err
	}
	for i := range c0 {
		if c0[i] <= 0 {
			return nil, Error{fmt.Sprintf("gofit: initial coefficient %d is %v, must be positive", i, c0[i]), []string{"KLSCF.Run"}}
		}
		if e0[i] <= 0 {
			return nil, Error{fmt.Sprintf("gofit: initial exponent %d is %v, must be positive", i, e0[i]), []string{"KLSCF.Run"}}
		}
	}
	if opt.MaxIterations < 1 {
		return nil, Error{fmt.Sprintf("gofit: bad iteration budget %d", opt.MaxIterations), []string{"KLSCF.Run"}}
	}
	res := new(SCFResult)
	res.Coeffs = make([]float64, len(c0))
	copy(res.Coeffs, c0)
	res.Expons = make([]float64, len(e0))
	copy(res.Expons, e0)
	res.Reason = MaxIterations
	csOld := make([]float64, len(c0))
	esOld := make([]float64, len(e0))
	g := make([]float64, s.grid.NPoints())
	ratio := make([]float64, s.grid.NPoints())
	fprev := math.Inf(1)
	for it := 1; it <= opt.MaxIterations; it++ {
		res.Iterations = it
		copy(csOld, res.Coeffs)
		copy(esOld, res.Expons)
		model, err := s.model.Evaluate(res.Coeffs, res.Expons)
		if err != nil {
			return nil, errDecorate(err, "KLSCF.Run")
		}
		if target == Coefficients || target == Both {
			s.ratio(model, ratio)
			if err := s.updateCoeffs(res.Coeffs, res.Expons, ratio, g); err != nil {
				return nil, errDecorate(err, "KLSCF.Run")
			}
			//the exponent update sees the refreshed coefficients
			model, err = s.model.Evaluate(res.Coeffs, res.Expons)
			if err != nil {
				return nil, errDecorate(err, "KLSCF.Run")
			}
		}
		if target == Exponents || target == Both {
			s.ratio(model, ratio)
			if err := s.updateExpons(res.Coeffs, res.Expons, ratio, g); err != nil {
				return nil, errDecorate(err, "KLSCF.Run")
			}
			model, err = s.model.Evaluate(res.Coeffs, res.Expons)
			if err != nil {
				return nil, errDecorate(err, "KLSCF.Run")
			}
		}
		obj, err := s.objective(model)
		if err != nil {
			return nil, errDecorate(err, "KLSCF.Run")
		}
		gof, err := Goodness(s.grid, s.dens, model)
		if err != nil {
			return nil, errDecorate(err, "KLSCF.Run")
		}
		res.Objective = append(res.Objective, obj)
		res.ModelMass = append(res.ModelMass, gof.ModelMass)
		res.L1Error = append(res.L1Error, gof.L1Error)
		if opt.Verbose {
			log.Printf("gofit: SCF iteration %d mass=%.10f l1=%.3e objective=%.3e", it, gof.ModelMass, gof.L1Error, obj)
		}
		conv := math.Abs(fprev-obj) < opt.ObjectiveTol
		if target == Coefficients || target == Both {
			conv = conv && floats.Distance(res.Coeffs, csOld, math.Inf(1)) < opt.CoeffTol
		}
		if target == Exponents || target == Both {
			conv = conv && floats.Distance(res.Expons, esOld, math.Inf(1)) < opt.ExponTol
		}
		fprev = obj
		if conv {
			res.Reason = Tolerance
			res.Converged = true
			break
		}
	}
	return res, nil
}
