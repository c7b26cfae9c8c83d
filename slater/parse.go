/*
 * parse.go, part of gofit.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
)

var (
	floatRe   = regexp.MustCompile(`-?\d+\.\d+`)
	orbLabRe  = regexp.MustCompile(`^[1-7][SPDF]$`)
	confTokRe = regexp.MustCompile(`([1-7][SPDF])\((\d+)\)`)
	coreTokRe = regexp.MustCompile(`([KLMN])\((\d+)\)`)
)

// closedShells expands the noble-core letters of a configuration string into
// the subshells they fill.
var closedShells = map[byte][]struct {
	label string
	occ   float64
}{
	'K': {{"1S", 2}},
	'L': {{"2S", 2}, {"2P", 6}},
	'M': {{"3S", 2}, {"3P", 6}, {"3D", 10}},
	'N': {{"4S", 2}, {"4P", 6}, {"4D", 10}, {"4F", 14}},
}

// parseShell maps an orbital label's angular letter to its Shell.
func parseShell(letter byte) (Shell, error) {
	switch letter {
	case 'S':
		return S, nil
	case 'P':
		return P, nil
	case 'D':
		return D, nil
	case 'F':
		return F, nil
	}
	return 0, Error{fmt.Sprintf("slater: unknown angular letter %q", letter), []string{"parseShell"}}
}

// parseConfiguration expands a configuration such as "K(2)2S(2)2P(4)" or
// "1S(2)2S(2)" into the occupation of each subshell label. Noble-core
// letters may carry their electron count or not; either way they expand to
// the closed subshells they name.
func parseConfiguration(conf string) (map[string]float64, error) {
	occ := make(map[string]float64)
	rest := confTokRe.ReplaceAllStringFunc(conf, func(tok string) string {
		m := confTokRe.FindStringSubmatch(tok)
		n, _ := strconv.Atoi(m[2])
		occ[m[1]] += float64(n)
		return ""
	})
	rest = coreTokRe.ReplaceAllStringFunc(rest, func(tok string) string {
		return tok[:1] //the count is implied by the letter
	})
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if sh, ok := closedShells[c]; ok {
			for _, s := range sh {
				occ[s.label] += s.occ
			}
			continue
		}
		return nil, Error{fmt.Sprintf("slater: can't make sense of configuration %q near %q", conf, string(c)), []string{"parseConfiguration"}}
	}
	if len(occ) == 0 {
		return nil, Error{fmt.Sprintf("slater: empty configuration %q", conf), []string{"parseConfiguration"}}
	}
	return occ, nil
}

// Load parses one atom from a Slater basis dump. The format is line
// oriented: a symbol+configuration line, an energies line, and then, per
// angular channel, a header naming its orbitals, their orbital energies and
// cusps, and the basis rows, each carrying the function label (principal
// number plus angular letter), the exponent, and one expansion coefficient
// per orbital of the channel.
func Load(r io.Reader) (*Atom, error) {
	a := new(Atom)
	var current []*Orbital //orbitals of the channel being read
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch {
		case a.Symbol == "":
			if len(fields) < 2 {
				return nil, Error{fmt.Sprintf("slater: malformed header line %q", line), []string{"Load"}}
			}
			a.Symbol = fields[0]
			a.Configuration = strings.Join(fields[1:], "")
		case fields[0] == "E":
			vals := floatRe.FindAllString(line, -1)
			if len(vals) < 3 {
				return nil, Error{fmt.Sprintf("slater: malformed energy line %q", line), []string{"Load"}}
			}
			e, _ := strconv.ParseFloat(vals[0], 64)
			k, _ := strconv.ParseFloat(vals[1], 64)
			p, _ := strconv.ParseFloat(vals[2], 64)
			a.Energy = math.Abs(e)
			a.Kinetic = math.Abs(k)
			a.Potential = p
		case fields[0] == "BASIS/ORB.ENERGY":
			if err := fillOrbitalField(current, fields, line, func(o *Orbital, v float64) { o.Energy = v }); err != nil {
				return nil, errDecorate(err, "Load")
			}
		case fields[0] == "CUSP":
			if err := fillOrbitalField(current, fields, line, func(o *Orbital, v float64) { o.Cusp = v }); err != nil {
				return nil, errDecorate(err, "Load")
			}
		case len(fields[0]) == 1 && strings.ContainsAny(fields[0], "SPDF"):
			//channel header: "S   1S   2S"
			shell, err := parseShell(fields[0][0])
			if err != nil {
				return nil, errDecorate(err, "Load")
			}
			if a.bases[shell] != nil {
				return nil, Error{fmt.Sprintf("slater: repeated %v channel", shell), []string{"Load"}}
			}
			a.bases[shell] = &ShellBasis{Shell: shell}
			current = nil
			for _, lab := range fields[1:] {
				if !orbLabRe.MatchString(lab) {
					return nil, Error{fmt.Sprintf("slater: bad orbital label %q in %q", lab, line), []string{"Load"}}
				}
				orb := &Orbital{Label: lab, Shell: shell}
				current = append(current, orb)
				a.Orbitals = append(a.Orbitals, orb)
			}
		case orbLabRe.MatchString(fields[0]):
			//basis row: "1S   12.683501   -0.0024917  0.0004442"
			shell, err := parseShell(fields[0][1])
			if err != nil {
				return nil, errDecorate(err, "Load")
			}
			basis := a.bases[shell]
			if basis == nil || len(current) == 0 || current[0].Shell != shell {
				return nil, Error{fmt.Sprintf("slater: basis row %q outside its channel section", line), []string{"Load"}}
			}
			if len(fields) != 2+len(current) {
				return nil, Error{fmt.Sprintf("slater: basis row %q has %d columns, want %d", line, len(fields), 2+len(current)), []string{"Load"}}
			}
			number := int(fields[0][0] - '0')
			expon, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("slater: bad exponent in %q: %v", line, err), []string{"Load"}}
			}
			basis.Exps = append(basis.Exps, expon)
			basis.Numbers = append(basis.Numbers, number)
			for i, orb := range current {
				c, err := strconv.ParseFloat(fields[2+i], 64)
				if err != nil {
					return nil, Error{fmt.Sprintf("slater: bad coefficient in %q: %v", line, err), []string{"Load"}}
				}
				orb.Coeffs = append(orb.Coeffs, c)
			}
		default:
			return nil, Error{fmt.Sprintf("slater: can't make sense of line %q", line), []string{"Load"}}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errDecorate(err, "Load")
	}
	if a.Symbol == "" || len(a.Orbitals) == 0 {
		return nil, Error{"slater: no atom found in input", []string{"Load"}}
	}
	occ, err := parseConfiguration(a.Configuration)
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	for _, orb := range a.Orbitals {
		orb.Occupation = occ[orb.Label]
	}
	slices.SortStableFunc(a.Orbitals, func(x, y *Orbital) int {
		return int(x.Shell) - int(y.Shell)
	})
	for _, orb := range a.Orbitals {
		if len(orb.Coeffs) != a.bases[orb.Shell].Len() {
			return nil, Error{fmt.Sprintf("slater: orbital %s has %d coefficients for a basis of %d", orb.Label, len(orb.Coeffs), a.bases[orb.Shell].Len()), []string{"Load"}}
		}
	}
	return a, nil
}

func fillOrbitalField(current []*Orbital, fields []string, line string, set func(*Orbital, float64)) error {
	if len(current) == 0 {
		return Error{fmt.Sprintf("slater: %q outside a channel section", line), []string{"fillOrbitalField"}}
	}
	vals := floatRe.FindAllString(line, -1)
	if len(vals) != len(current) {
		return Error{fmt.Sprintf("slater: %d values in %q for %d orbitals", len(vals), line, len(current)), []string{"fillOrbitalField"}}
	}
	for i, orb := range current {
		v, err := strconv.ParseFloat(vals[i], 64)
		if err != nil {
			return Error{fmt.Sprintf("slater: bad value in %q: %v", line, err), []string{"fillOrbitalField"}}
		}
		set(orb, v)
	}
	return nil
}

// LoadFile parses the atom stored in the named file.
func LoadFile(path string) (*Atom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{err.Error(), []string{"LoadFile"}}
	}
	defer f.Close()
	a, err := Load(f)
	if err != nil {
		return nil, errDecorate(err, "LoadFile "+path)
	}
	return a, nil
}

// LoadElement loads the tabulated atom for the given element symbol from a
// directory of Slater dumps. Files are named after the lowercase symbol with
// the extension ".slater"; the charged species carry an "_anion" or
// "_cation" suffix. At most one of anion and cation may be requested.
func LoadElement(dir, symbol string, anion, cation bool) (*Atom, error) {
	if symbol == "" {
		return nil, Error{"slater: empty element symbol", []string{"LoadElement"}}
	}
	for _, r := range symbol {
		if !unicode.IsLetter(r) {
			return nil, Error{fmt.Sprintf("slater: bad element symbol %q", symbol), []string{"LoadElement"}}
		}
	}
	if anion && cation {
		return nil, Error{fmt.Sprintf("slater: %s requested as both anion and cation", symbol), []string{"LoadElement"}}
	}
	name := strings.ToLower(symbol)
	if anion {
		name += "_anion"
	}
	if cation {
		name += "_cation"
	}
	return LoadFile(filepath.Join(dir, name+".slater"))
}
