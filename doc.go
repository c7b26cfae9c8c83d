/*
 * doc.go, part of gofit.
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

/*Package fit fits linear combinations of Gaussian basis functions to
reference radial electron densities.

	**gofit capabilities**

    Evaluates atomic (single-center) and molecular (multi-center) Gaussian
	density models, with S- and P-type primitives, normalized or not,
	together with their analytic parameter derivatives.

    Integrates point-sampled radial functions on uniform or custom radial
	grids, with trapezoidal or Simpson quadrature, and a spherical
	(4 pi r^2) volume element when requested.

    Measures the difference between a model and a reference density with
	either a least-squares or a Kullback-Leibler objective, including the
	analytic gradients with respect to coefficients, exponents, or both.

    Fits a model to a reference density with the MBIS self-consistent
	scheme: closed-form multiplicative updates for the coefficients and
	exponents under the Kullback-Leibler measure, iterated to a fixed
	point. Convergence failures are reported, not raised, so the caller
	decides how to react.

    Alternatively, hands the objective and its gradient to the gonum
	optimize machinery for gradient-based minimization of either or both
	parameter groups.

The reference densities themselves are built by the slater subpackage from
tabulated Slater-type-orbital data, and both reference and fitted densities
can be stored as compressed radial tables with the dtable subpackage.

All computations in this library are plain synchronous functions of their
numeric inputs. Nothing here starts goroutines or keeps hidden state, so a
fit is reproducible from its inputs alone.*/
package fit
