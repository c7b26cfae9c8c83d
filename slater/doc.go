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

/*Package slater evaluates reference atomic electron densities from
tabulated Slater-type-orbital expansions.

An Atom is loaded from a fixed-width basis dump (see Load) and holds, per
angular-momentum channel, the exponents and principal quantum numbers of its
Slater basis, and, per orbital, the expansion coefficients, occupation,
energy and cusp. From those it builds the total, valence or core radial
electron density, the density derivative, and the positive-definite
(Lagrangian) kinetic-energy density, all evaluated on caller-supplied radial
points. The total density integrated over all space recovers the electron
count, which makes these densities suitable as fitting references for the
parent fit package.

Atoms are read-only after loading. All evaluation methods are pure functions
of the atom and the points.*/
package slater
