/*
 * errors.go, part of gofit.
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

import "strings"

// Error implements the decorated-error convention of the parent package: a
// message plus the trace of callers it crossed.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string { return err.message }

// Decorate adds the given string to the trace and returns the current trace.
// An empty string just returns the trace.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err Error) String() string {
	return strings.Join(append([]string{err.message}, err.deco...), " ")
}

// errDecorate pushes caller onto the trace of err if it carries one, or
// wraps it otherwise.
func errDecorate(err error, caller string) error {
	errd, ok := err.(interface {
		Error() string
		Decorate(string) []string
	})
	if !ok {
		return Error{err.Error(), []string{caller}}
	}
	return Error{errd.Error(), errd.Decorate(caller)}
}
