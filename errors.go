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

package fit

// DecoratedError is the interface for errors in this library. The Decorate
// method allows to add and retrieve information from the error, without
// changing its type or wrapping it in something else. The decoration slice
// should contain the functions in the calling stack plus, for each function,
// any relevant extra information in the format "FunctionName: Extra info".
type DecoratedError interface {
	Error() string
	Decorate(string) []string
}

// Error is the concrete error type of the fit package. Validation failures
// at call boundaries are reported with it. Numeric singularities are never
// reported as errors; they are recovered in place by the function that
// encounters them.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string { return err.message }

// Decorate adds dec to the decoration slice, unless it is empty, and returns
// the current value of the slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate decorates err if it implements DecoratedError, and otherwise
// transforms it into an Error, so the information is not lost when errors
// cross package boundaries.
func errDecorate(err error, caller string) error {
	err2, ok := err.(DecoratedError)
	if ok {
		err2.Decorate(caller)
		return err2
	}
	return Error{err.Error(), []string{caller}}
}
