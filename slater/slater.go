/*
 * slater.go, part of gofit.
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

package slater

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Shell is an angular-momentum channel.
type Shell int

const (
	S Shell = iota
	P
	D
	F
	nshells
)

func (s Shell) String() string {
	if s < 0 || s >= nshells {
		return fmt.Sprintf("shell(%d)", int(s))
	}
	return string("SPDF"[s])
}

// angularNumber is the l(l+1) table used by the kinetic-energy density.
// It is scoped to the evaluator, not a process-wide global.
var angularNumber = [nshells]float64{0, 2, 6, 12}

// originTol is the radius below which singular 1/r factors are replaced by
// their defined sentinel value, zero.
const originTol = 1e-10

// ShellBasis is the Slater-type basis of one angular channel: the zeta
// exponents and the principal quantum numbers of its functions, index
// aligned.
type ShellBasis struct {
	Shell   Shell
	Exps    []float64
	Numbers []int
}

// Len returns the number of basis functions in the channel.
func (b *ShellBasis) Len() int { return len(b.Exps) }

// Orbital is one occupied atomic orbital: a linear combination of the
// Slater basis of its channel.
type Orbital struct {
	Label      string //e.g. "1S"
	Shell      Shell
	Energy     float64
	Cusp       float64
	Occupation float64
	//Coeffs has one coefficient per function of the channel's basis.
	Coeffs []float64
}

// Atom holds the parsed Slater expansion of one atom. It is read-only after
// loading; none of its methods modify it.
type Atom struct {
	Symbol        string
	Configuration string
	//Total, kinetic and potential energies as tabulated. The total and
	//kinetic energies are stored as positive magnitudes, following the
	//reference-data convention.
	Energy    float64
	Kinetic   float64
	Potential float64
	//Orbitals ordered S first, then P, then D, then F.
	Orbitals []*Orbital
	bases    [nshells]*ShellBasis
}

// Basis returns the Slater basis of the given channel, or an error if the
// atom has no functions on it.
func (a *Atom) Basis(s Shell) (*ShellBasis, error) {
	if s < 0 || s >= nshells {
		return nil, Error{fmt.Sprintf("slater: no such shell %v", s), []string{"Basis"}}
	}
	if a.bases[s] == nil {
		return nil, Error{fmt.Sprintf("slater: atom %s has no %v functions", a.Symbol, s), []string{"Basis"}}
	}
	return a.bases[s], nil
}

// NElectrons returns the number of electrons, the sum of the orbital
// occupations.
func (a *Atom) NElectrons() float64 {
	var n float64
	for _, o := range a.Orbitals {
		n += o.Occupation
	}
	return n
}

// slaterNorm is the quantum-chemistry normalization of a Slater-type
// orbital, (2z)^n * sqrt(2z/(2n)!).
func slaterNorm(expon float64, number int) float64 {
	n := float64(number)
	return math.Pow(2*expon, n) * math.Sqrt(2*expon/math.Gamma(2*n+1))
}

func checkBasisDims(exps []float64, numbers []int, points []float64, caller string) error {
	if len(exps) != len(numbers) {
		return Error{fmt.Sprintf("slater: %d exponents given for %d quantum numbers", len(exps), len(numbers)), []string{caller}}
	}
	if len(exps) == 0 || len(points) == 0 {
		return Error{"slater: empty basis or point set", []string{caller}}
	}
	return nil
}

// SlaterMatrix evaluates M Slater-type orbitals, N(z,n)*r^(n-1)*exp(-z*r),
// on N radial points, returning the N x M matrix.
func SlaterMatrix(exps []float64, numbers []int, points []float64) (*mat.Dense, error) {
	if err := checkBasisDims(exps, numbers, points, "SlaterMatrix"); err != nil {
		return nil, err
	}
	s := mat.NewDense(len(points), len(exps), nil)
	for i, z := range exps {
		norm := slaterNorm(z, numbers[i])
		n := float64(numbers[i])
		for j, r := range points {
			s.Set(j, i, norm*math.Pow(r, n-1)*math.Exp(-z*r))
		}
	}
	return s, nil
}

// SlaterMatrixDeriv evaluates the radial derivatives of M Slater-type
// orbitals, [(n-1)/r - z]*N(z,n)*r^(n-1)*exp(-z*r), on N points. The
// derivative is singular at the origin; below originTol it is defined as
// zero, so the result never carries a NaN or Inf from that point.
func SlaterMatrixDeriv(exps []float64, numbers []int, points []float64) (*mat.Dense, error) {
	s, err := SlaterMatrix(exps, numbers, points)
	if err != nil {
		return nil, errDecorate(err, "SlaterMatrixDeriv")
	}
	for i := range exps {
		n := float64(numbers[i])
		for j, r := range points {
			if math.Abs(r) < originTol {
				s.Set(j, i, 0)
				continue
			}
			s.Set(j, i, ((n-1)/r-exps[i])*s.At(j, i))
		}
	}
	return s, nil
}

// PhiMatrix evaluates every orbital of the atom on the given radial points,
// returning the N x K matrix with one column per orbital, ordered as
// a.Orbitals. With deriv true the columns hold the radial derivatives
// instead, zero at the origin.
func (a *Atom) PhiMatrix(points []float64, deriv bool) (*mat.Dense, error) {
	if len(points) == 0 {
		return nil, Error{"slater: empty point set", []string{"PhiMatrix"}}
	}
	phi := mat.NewDense(len(points), len(a.Orbitals), nil)
	//cache the per-channel Slater matrices, orbitals of a channel share it
	var smats [nshells]*mat.Dense
	for k, orb := range a.Orbitals {
		if smats[orb.Shell] == nil {
			basis, err := a.Basis(orb.Shell)
			if err != nil {
				return nil, errDecorate(err, "PhiMatrix")
			}
			var sm *mat.Dense
			if deriv {
				sm, err = SlaterMatrixDeriv(basis.Exps, basis.Numbers, points)
			} else {
				sm, err = SlaterMatrix(basis.Exps, basis.Numbers, points)
			}
			if err != nil {
				return nil, errDecorate(err, "PhiMatrix")
			}
			smats[orb.Shell] = sm
		}
		sm := smats[orb.Shell]
		for j := range points {
			var v float64
			for i, c := range orb.Coeffs {
				v += sm.At(j, i) * c
			}
			phi.Set(j, k, v)
		}
	}
	return phi, nil
}

// DensityMode selects which part of the electron density is built.
type DensityMode int

const (
	//Every orbital weighted by its occupation.
	Total DensityMode = iota
	//Occupations damped by the Gaussian distance of the orbital energy
	//to the highest occupied orbital energy.
	Valence
	//The complement of Valence; Core plus Valence is Total.
	Core
)

func (m DensityMode) String() string {
	switch m {
	case Total:
		return "total"
	case Valence:
		return "valence"
	case Core:
		return "core"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// homoEnergy is the energy of the last orbital in the S,P,D,F ordering,
// which the reference data convention takes as the highest occupied one.
func (a *Atom) homoEnergy() float64 {
	return a.Orbitals[len(a.Orbitals)-1].Energy
}

// occupations returns the orbital occupations reweighted for the requested
// density mode.
func (a *Atom) occupations(mode DensityMode) ([]float64, error) {
	occ := make([]float64, len(a.Orbitals))
	homo := a.homoEnergy()
	for k, orb := range a.Orbitals {
		de := orb.Energy - homo
		w := math.Exp(-de * de)
		switch mode {
		case Total:
			occ[k] = orb.Occupation
		case Valence:
			occ[k] = orb.Occupation * w
		case Core:
			occ[k] = orb.Occupation * (1 - w)
		default:
			return nil, Error{fmt.Sprintf("slater: unrecognized density mode %v", mode), []string{"occupations"}}
		}
	}
	return occ, nil
}

// Density evaluates the atomic electron density on the given radial points:
// the occupation-weighted sum of the squared orbitals, divided by 4 pi.
func (a *Atom) Density(points []float64, mode DensityMode) ([]float64, error) {
	occ, err := a.occupations(mode)
	if err != nil {
		return nil, errDecorate(err, "Density")
	}
	phi, err := a.PhiMatrix(points, false)
	if err != nil {
		return nil, errDecorate(err, "Density")
	}
	dens := make([]float64, len(points))
	for j := range points {
		var v float64
		for k := range a.Orbitals {
			p := phi.At(j, k)
			v += occ[k] * p * p
		}
		dens[j] = v / (4 * math.Pi)
	}
	return dens, nil
}

// DensityDeriv evaluates the radial derivative of the total density,
// 2*sum(occ*phi*phi')/4pi, zero at the origin where the orbital derivative
// is defined as zero.
func (a *Atom) DensityDeriv(points []float64) ([]float64, error) {
	phi, err := a.PhiMatrix(points, false)
	if err != nil {
		return nil, errDecorate(err, "DensityDeriv")
	}
	dphi, err := a.PhiMatrix(points, true)
	if err != nil {
		return nil, errDecorate(err, "DensityDeriv")
	}
	deriv := make([]float64, len(points))
	for j := range points {
		var v float64
		for k, orb := range a.Orbitals {
			v += orb.Occupation * 2 * phi.At(j, k) * dphi.At(j, k)
		}
		deriv[j] = v / (4 * math.Pi)
	}
	return deriv, nil
}

// KineticDensity evaluates the positive-definite (Lagrangian) kinetic
// energy density on the given radial points, from the closed-form pair sum
// over the Slater functions of each orbital. The 1/r^2 factor is forced to
// zero below originTol.
func (a *Atom) KineticDensity(points []float64) ([]float64, error) {
	kin := make([]float64, len(points))
	for _, orb := range a.Orbitals {
		basis, err := a.Basis(orb.Shell)
		if err != nil {
			return nil, errDecorate(err, "KineticDensity")
		}
		l2 := angularNumber[orb.Shell]
		m := basis.Len()
		for i := 0; i < m; i++ {
			zi := basis.Exps[i]
			ni := float64(basis.Numbers[i])
			wi := orb.Coeffs[i] * slaterNorm(zi, basis.Numbers[i])
			for j := 0; j < m; j++ {
				zj := basis.Exps[j]
				nj := float64(basis.Numbers[j])
				w := wi * orb.Coeffs[j] * slaterNorm(zj, basis.Numbers[j])
				for p, r := range points {
					e := math.Exp(-(zi + zj) * r)
					term := (l2 - ni*(ni-1)) * math.Pow(r, ni+nj-2)
					term += 2 * zj * nj * math.Pow(r, ni+nj-1)
					term -= zi * zi * math.Pow(r, ni+nj)
					kin[p] += orb.Occupation * w * e * term
				}
			}
		}
	}
	for p, r := range points {
		if math.Abs(r) < originTol {
			kin[p] = 0
			continue
		}
		kin[p] /= r * r
	}
	for p := range kin {
		kin[p] /= 2 * 4 * math.Pi
	}
	return kin, nil
}
