package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/vec"
)

// SpinSeed pins the spin at one site to a given norm before the run,
// keeping whatever direction the site already has.
type SpinSeed struct {
	X, Y, Z int
	Norm    float64
}

// ParamSet is the result of reading a coupling sheet: the Hamiltonian
// parameters, any per-site spin seeds, and the keys the sheet used
// that name no known coupling.
type ParamSet struct {
	Params  msd.Parameters
	Spins   []SpinSeed
	Unknown []string
}

// scalarKeys and vectorKeys map sheet keys onto Parameters fields. The
// biquadratic couplings keep their historical lowercase-b keys.
func scalarKeys(p *msd.Parameters) map[string]*float64 {
	return map[string]*float64{
		"kT": &p.KT,
		"SL": &p.SL, "SR": &p.SR, "Sm": &p.Sm,
		"FL": &p.FL, "FR": &p.FR, "Fm": &p.Fm,
		"JL": &p.JL, "JR": &p.JR, "Jm": &p.Jm,
		"JmL": &p.JmL, "JmR": &p.JmR, "JLR": &p.JLR,
		"Je0L": &p.Je0L, "Je0R": &p.Je0R, "Je0m": &p.Je0m,
		"Je1L": &p.Je1L, "Je1R": &p.Je1R, "Je1m": &p.Je1m,
		"Je1mL": &p.Je1mL, "Je1mR": &p.Je1mR, "Je1LR": &p.Je1LR,
		"JeeL": &p.JeeL, "JeeR": &p.JeeR, "Jeem": &p.Jeem,
		"JeemL": &p.JeemL, "JeemR": &p.JeemR, "JeeLR": &p.JeeLR,
		"bL": &p.BqL, "bR": &p.BqR, "bm": &p.Bqm,
		"bmL": &p.BqmL, "bmR": &p.BqmR, "bLR": &p.BqLR,
	}
}

func vectorKeys(p *msd.Parameters) map[string]*vec.Vec3 {
	return map[string]*vec.Vec3{
		"B":  &p.B,
		"AL": &p.AL, "AR": &p.AR, "Am": &p.Am,
		"DL": &p.DL, "DR": &p.DR, "Dm": &p.Dm,
		"DmL": &p.DmL, "DmR": &p.DmR, "DLR": &p.DLR,
	}
}

// ParseParams reads a coupling sheet. Lines are "key = value" with #
// comments and blank lines ignored; vector values are three numbers.
// A line "[x y z] = norm" seeds the spin norm at one site. Keys start
// from DefaultParameters, so a sheet only needs the couplings it
// changes.
func ParseParams(r io.Reader) (*ParamSet, error) {
	set := &ParamSet{Params: msd.DefaultParameters()}
	scalars := scalarKeys(&set.Params)
	vectors := vectorKeys(&set.Params)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' in %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if strings.HasPrefix(key, "[") {
			seed, err := parseSpinSeed(key, value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			set.Spins = append(set.Spins, seed)
			continue
		}

		switch {
		case scalars[key] != nil:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
			}
			*scalars[key] = v
		case vectors[key] != nil:
			v, err := parseVec(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
			}
			*vectors[key] = v
		default:
			set.Unknown = append(set.Unknown, key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadParams reads a coupling sheet from a file.
func LoadParams(path string) (*ParamSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set, err := ParseParams(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func parseVec(value string) (vec.Vec3, error) {
	parts := strings.Fields(value)
	if len(parts) != 3 {
		return vec.Vec3{}, fmt.Errorf("want 3 components, got %d", len(parts))
	}
	var v vec.Vec3
	for i, dst := range []*float64{&v.X, &v.Y, &v.Z} {
		f, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return vec.Vec3{}, err
		}
		*dst = f
	}
	return v, nil
}

func parseSpinSeed(key, value string) (SpinSeed, error) {
	if !strings.HasSuffix(key, "]") {
		return SpinSeed{}, fmt.Errorf("malformed site %q", key)
	}
	parts := strings.Fields(key[1 : len(key)-1])
	if len(parts) != 3 {
		return SpinSeed{}, fmt.Errorf("site wants 3 coordinates, got %d", len(parts))
	}
	var seed SpinSeed
	for i, dst := range []*int{&seed.X, &seed.Y, &seed.Z} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return SpinSeed{}, err
		}
		*dst = n
	}
	norm, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return SpinSeed{}, err
	}
	seed.Norm = norm
	return seed, nil
}

// WriteParams renders p as a coupling sheet, grouped the way the
// sheets are conventionally laid out.
func WriteParams(w io.Writer, p msd.Parameters) error {
	bw := bufio.NewWriter(w)

	writeScalar := func(key string, v float64) {
		fmt.Fprintf(bw, "%s = %s\n", key, formatFloat(v))
	}
	writeVec := func(key string, v vec.Vec3) {
		fmt.Fprintf(bw, "%s = %s %s %s\n", key,
			formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
	}

	writeScalar("kT", p.KT)
	fmt.Fprintln(bw)
	writeVec("B", p.B)
	fmt.Fprintln(bw)
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"SL", p.SL}, {"SR", p.SR}, {"Sm", p.Sm},
		{"FL", p.FL}, {"FR", p.FR}, {"Fm", p.Fm},
	} {
		writeScalar(kv.k, kv.v)
	}
	fmt.Fprintln(bw)
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"JL", p.JL}, {"JR", p.JR}, {"Jm", p.Jm},
		{"JmL", p.JmL}, {"JmR", p.JmR}, {"JLR", p.JLR},
	} {
		writeScalar(kv.k, kv.v)
	}
	fmt.Fprintln(bw)
	writeScalar("Je0L", p.Je0L)
	writeScalar("Je0R", p.Je0R)
	writeScalar("Je0m", p.Je0m)
	fmt.Fprintln(bw)
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"Je1L", p.Je1L}, {"Je1R", p.Je1R}, {"Je1m", p.Je1m},
		{"Je1mL", p.Je1mL}, {"Je1mR", p.Je1mR}, {"Je1LR", p.Je1LR},
	} {
		writeScalar(kv.k, kv.v)
	}
	fmt.Fprintln(bw)
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"JeeL", p.JeeL}, {"JeeR", p.JeeR}, {"Jeem", p.Jeem},
		{"JeemL", p.JeemL}, {"JeemR", p.JeemR}, {"JeeLR", p.JeeLR},
	} {
		writeScalar(kv.k, kv.v)
	}
	fmt.Fprintln(bw)
	writeVec("AL", p.AL)
	writeVec("AR", p.AR)
	writeVec("Am", p.Am)
	fmt.Fprintln(bw)
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"bL", p.BqL}, {"bR", p.BqR}, {"bm", p.Bqm},
		{"bmL", p.BqmL}, {"bmR", p.BqmR}, {"bLR", p.BqLR},
	} {
		writeScalar(kv.k, kv.v)
	}
	fmt.Fprintln(bw)
	writeVec("DL", p.DL)
	writeVec("DR", p.DR)
	writeVec("Dm", p.Dm)
	writeVec("DmL", p.DmL)
	writeVec("DmR", p.DmR)
	writeVec("DLR", p.DLR)

	return bw.Flush()
}

// SaveParams writes p as a coupling sheet file.
func SaveParams(path string, p msd.Parameters) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteParams(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
