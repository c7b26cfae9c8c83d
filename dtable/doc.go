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

/*Package dtable reads and writes compressed density tables.

A density table stores point-sampled radial functions, one row per grid
point and one column per function (the radial point itself, the reference
density, a fitted model, a kinetic-energy density, and so on), so expensive
densities can be evaluated once and reused across fitting runs.

The on-disk format is line oriented and compressed as a whole. The
compression scheme is chosen from the last letter of the file name: 'l' for
LZW, 'z' for gzip, 'r' for raw DEFLATE, and zstd for 's', 'f' or anything
else, zstd being the recommended default. The payload starts with optional
key=value metadata lines, then a "** npoints ncols" line, then a line with
the column labels, then the rows, in scientific notation.*/
package dtable
