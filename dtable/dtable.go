/*
 * dtable.go, part of gofit.
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
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const lzwLitwidth int = 8

// defaultPrec is the number of significant digits written per value. It can
// be overridden with a "prec" metadata key.
const defaultPrec = 10

// TableW writes a density table.
type TableW struct {
	f         *os.File
	h         io.WriteCloser
	cols      []string
	npoints   int
	written   int
	filename  string
	writeable bool
	prec      int
}

// NewWriter creates the named table file for npoints rows with the given
// column labels, which must not contain whitespace. The header map, which
// may be nil, is written as key=value metadata; a "prec" key sets the
// number of significant digits per value. The optional compression level
// applies to the DEFLATE-based schemes.
func NewWriter(name string, npoints int, cols []string, header map[string]string, compressionLevel ...int) (*TableW, error) {
	level := flate.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if npoints < 1 || len(cols) < 1 {
		return nil, Error{fmt.Sprintf("bad table dimensions %dx%d", npoints, len(cols)), name, []string{"NewWriter"}, true}
	}
	for _, c := range cols {
		if c == "" || strings.ContainsAny(c, " \t\n") {
			return nil, Error{fmt.Sprintf("bad column label %q", c), name, []string{"NewWriter"}, true}
		}
	}
	T := new(TableW)
	var err error
	T.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	T.h, err = newCompressor(name, T.f, level)
	if err != nil {
		return nil, Error{"can't set up compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	T.cols = make([]string, len(cols))
	copy(T.cols, cols)
	T.npoints = npoints
	T.filename = name
	T.writeable = true
	T.prec = defaultPrec
	if header != nil {
		if p, ok := header["prec"]; ok {
			prec, err := strconv.Atoi(p)
			if err == nil && prec > 0 {
				T.prec = prec
			} else {
				log.Printf("Invalid precision for table %s. Will use the default", T.filename)
			}
		}
		for k, v := range header {
			fmt.Fprintf(T.h, "%s=%v\n", k, v)
		}
	}
	fmt.Fprintf(T.h, "** %d %d\n", T.npoints, len(T.cols))
	fmt.Fprintln(T.h, strings.Join(T.cols, " "))
	return T, nil
}

// WNext writes the next row, which must have one value per column.
func (T *TableW) WNext(vals []float64) error {
	if !T.writeable {
		return Error{TableUnIniWrite, T.filename, []string{"WNext"}, true}
	}
	if len(vals) != len(T.cols) {
		return Error{fmt.Sprintf("%d values given, but %d expected", len(vals), len(T.cols)), T.filename, []string{"WNext"}, true}
	}
	if T.written >= T.npoints {
		return Error{fmt.Sprintf("table already holds its %d rows", T.npoints), T.filename, []string{"WNext"}, true}
	}
	for i, v := range vals {
		if i > 0 {
			io.WriteString(T.h, " ")
		}
		fmt.Fprintf(T.h, "%.*e", T.prec, v)
	}
	io.WriteString(T.h, "\n")
	T.written++
	return nil
}

// Close flushes and closes the table. It reports an error if fewer rows
// were written than announced, after closing anyway.
func (T *TableW) Close() error {
	if T == nil || !T.writeable {
		return nil
	}
	T.h.Close()
	T.f.Close()
	T.writeable = false
	if T.written != T.npoints {
		return Error{fmt.Sprintf("only %d of %d rows written", T.written, T.npoints), T.filename, []string{"Close"}, true}
	}
	return nil
}

// Len returns the number of rows announced at creation.
func (T *TableW) Len() int { return T.npoints }

// TableR reads a density table.
type TableR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	cols     []string
	npoints  int
	filename string
	readable bool
}

// zstd.Decoder's Close returns nothing, so it can't be an io.ReadCloser by
// itself.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

func newCompressor(name string, w io.Writer, level int) (io.WriteCloser, error) {
	switch compressionScheme(name) {
	case 'l':
		return lzw.NewWriter(w, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewWriterLevel(w, level)
	case 'r':
		return flate.NewWriter(w, level)
	default:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

func newDecompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch compressionScheme(name) {
	case 'l':
		return lzw.NewReader(r, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	default:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdql{d.Close, d}, nil
	}
}

// compressionScheme returns the scheme selector, the lowercased last letter
// of the file name.
func compressionScheme(name string) byte {
	if name == "" {
		return 0
	}
	return strings.ToLower(name)[len(name)-1]
}

// Open opens a density table for reading. It returns the handle and the
// key=value metadata found before the dimension line, or nil if there is
// none.
func Open(name string) (*TableR, map[string]string, error) {
	T := new(TableR)
	T.npoints = -1
	T.filename = name
	var m map[string]string
	var err error
	T.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	T.dec, err = newDecompressor(name, bufio.NewReader(T.f))
	if err != nil {
		return nil, nil, Error{"can't set up decompression: " + err.Error(), name, []string{"Open"}, true}
	}
	T.h = bufio.NewReader(T.dec)
	for {
		str, err := T.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"can't read header: " + err.Error(), name, []string{"Open"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			dims := strings.Fields(str)
			if len(dims) != 3 {
				return nil, nil, Error{fmt.Sprintf("can't read table dimensions from %q", str), name, []string{"Open"}, true}
			}
			T.npoints, err = strconv.Atoi(dims[1])
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("can't read row count from %q: %s", dims[1], err.Error()), name, []string{"Open"}, true}
			}
			ncols, err := strconv.Atoi(dims[2])
			if err != nil || ncols < 1 || T.npoints < 1 {
				return nil, nil, Error{fmt.Sprintf("bad table dimensions in %q", str), name, []string{"Open"}, true}
			}
			labels, err := T.h.ReadString('\n')
			if err != nil {
				return nil, nil, Error{"can't read column labels: " + err.Error(), name, []string{"Open"}, true}
			}
			T.cols = strings.Fields(labels)
			if len(T.cols) != ncols {
				return nil, nil, Error{fmt.Sprintf("%d column labels for %d columns", len(T.cols), ncols), name, []string{"Open"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{fmt.Sprintf("malformed metadata line %q", str), name, []string{"Open"}, true}
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[kv[0]] = kv[1]
	}
	T.readable = true
	return T, m, nil
}

// Readable returns true if rows can still be read from the handle.
func (T *TableR) Readable() bool { return T.readable }

// Cols returns the column labels. The caller must not modify them.
func (T *TableR) Cols() []string { return T.cols }

// Len returns the number of rows of the table.
func (T *TableR) Len() int { return T.npoints }

// Next reads the next row into vals, which must have one slot per column.
// At the end of the table it closes the handle and returns io.EOF.
func (T *TableR) Next(vals []float64) error {
	if !T.readable {
		return Error{TableUnIniRead, T.filename, []string{"Next"}, true}
	}
	if len(vals) != len(T.cols) {
		return Error{fmt.Sprintf("%d slots given, but %d expected", len(vals), len(T.cols)), T.filename, []string{"Next"}, true}
	}
	str, err := T.h.ReadString('\n')
	if err != nil {
		if err == io.EOF && str == "" {
			T.Close()
			return io.EOF
		}
		return Error{"can't read row: " + err.Error(), T.filename, []string{"Next"}, true}
	}
	fields := strings.Fields(str)
	if len(fields) != len(T.cols) {
		return Error{fmt.Sprintf("row has %d values for %d columns", len(fields), len(T.cols)), T.filename, []string{"Next"}, true}
	}
	for i, v := range fields {
		vals[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Error{fmt.Sprintf("can't parse value %d (%s): %s", i, v, err.Error()), T.filename, []string{"Next"}, true}
		}
	}
	return nil
}

// ReadAll reads every remaining row, returning one slice per column, and
// closes the handle.
func (T *TableR) ReadAll() ([][]float64, error) {
	out := make([][]float64, len(T.cols))
	for i := range out {
		out[i] = make([]float64, 0, T.npoints)
	}
	row := make([]float64, len(T.cols))
	for {
		err := T.Next(row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "ReadAll")
		}
		for i, v := range row {
			out[i] = append(out[i], v)
		}
	}
	if len(out[0]) != T.npoints {
		return nil, Error{fmt.Sprintf("table holds %d rows but announced %d", len(out[0]), T.npoints), T.filename, []string{"ReadAll"}, true}
	}
	return out, nil
}

// Close closes the handle and marks it as unreadable.
func (T *TableR) Close() {
	if !T.readable {
		return
	}
	T.dec.Close()
	T.f.Close()
	T.readable = false
}

//Errors

// errDecorate asserts that err carries a decoration trace and pushes the
// caller's name onto it.
func errDecorate(err error, caller string) error {
	err2, ok := err.(interface {
		Error() string
		Decorate(string) []string
	})
	if !ok {
		return Error{err.Error(), "", []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2.(error)
}

// Error is the error type for density-table files.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dtable file %s error: %s", err.filename, err.message)
}

// Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }

// Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	TableUnIniRead  = "table object uninitialized to read"
	TableUnIniWrite = "table object uninitialized to write"
)
