/*
 * dtable_test.go, part of gofit.
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

package dtable

import (
	"io"
	"math"
	"path/filepath"
	"testing"
)

func writeTestTable(Te *testing.T, name string, header map[string]string) ([]float64, []float64) {
	points := make([]float64, 50)
	dens := make([]float64, 50)
	for i := range points {
		points[i] = 0.1 * float64(i)
		dens[i] = math.Exp(-2*points[i]) / math.Pi
	}
	w, err := NewWriter(name, len(points), []string{"r", "density"}, header)
	if err != nil {
		Te.Fatal(err)
	}
	for i := range points {
		if err := w.WNext([]float64{points[i], dens[i]}); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	return points, dens
}

// Round-trips a table through each compression scheme.
func TestRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"be.dts", "be.dtz", "be.dtr", "be.dtl"} {
		path := filepath.Join(dir, name)
		points, dens := writeTestTable(Te, path, map[string]string{"element": "be", "prec": "12"})
		r, m, err := Open(path)
		if err != nil {
			Te.Fatal(err)
		}
		if m["element"] != "be" {
			Te.Errorf("%s: lost metadata: %v", name, m)
		}
		if r.Len() != len(points) {
			Te.Errorf("%s: got %d rows", name, r.Len())
		}
		cols := r.Cols()
		if len(cols) != 2 || cols[0] != "r" || cols[1] != "density" {
			Te.Errorf("%s: bad columns %v", name, cols)
		}
		read, err := r.ReadAll()
		if err != nil {
			Te.Fatal(err)
		}
		for i := range points {
			if math.Abs(read[0][i]-points[i]) > 1e-10 || math.Abs(read[1][i]-dens[i]) > 1e-10 {
				Te.Errorf("%s: row %d differs: %v %v", name, i, read[0][i], read[1][i])
			}
		}
	}
}

func TestRowByRow(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "rows.dts")
	points, dens := writeTestTable(Te, path, nil)
	r, m, err := Open(path)
	if err != nil {
		Te.Fatal(err)
	}
	if m != nil {
		Te.Errorf("unexpected metadata %v", m)
	}
	row := make([]float64, 2)
	n := 0
	for {
		err = r.Next(row)
		if err == io.EOF {
			break
		}
		if err != nil {
			Te.Fatal(err)
		}
		if math.Abs(row[0]-points[n]) > 1e-9 || math.Abs(row[1]-dens[n]) > 1e-9 {
			Te.Errorf("row %d differs", n)
		}
		n++
	}
	if n != len(points) {
		Te.Errorf("read %d rows, want %d", n, len(points))
	}
	if r.Readable() {
		Te.Error("handle still readable after EOF")
	}
	if err := r.Next(row); err == io.EOF || err == nil {
		Te.Error("expected a hard error reading a closed table")
	}
}

func TestWriterValidation(Te *testing.T) {
	dir := Te.TempDir()
	if _, err := NewWriter(filepath.Join(dir, "bad.dts"), 0, []string{"r"}, nil); err == nil {
		Te.Error("expected an error for zero rows")
	}
	if _, err := NewWriter(filepath.Join(dir, "bad.dts"), 10, []string{"a b"}, nil); err == nil {
		Te.Error("expected an error for a label with spaces")
	}
	w, err := NewWriter(filepath.Join(dir, "short.dts"), 3, []string{"r"}, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.WNext([]float64{1, 2}); err == nil {
		Te.Error("expected an error for a row of the wrong width")
	}
	w.WNext([]float64{1})
	if err := w.Close(); err == nil {
		Te.Error("expected an error closing a short table")
	}
}
