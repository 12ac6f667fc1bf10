package msd

import "github.com/spinsim/msd/internal/vec"

// Parameters holds every coupling coefficient of the device Hamiltonian.
// Uniform coefficients are grouped by region: L and R are the two
// ferromagnetic leads, m the molecule, and mL, mR, LR the three
// interfaces. It is a plain value type; copies are independent and
// equality is field-for-field.
type Parameters struct {
	KT float64  // thermal energy
	B  vec.Vec3 // external magnetic field

	SL, SR, Sm float64 // spin magnitudes
	FL, FR, Fm float64 // max spin fluctuation magnitudes

	// Heisenberg exchange, spin-spin.
	JL, JR, Jm, JmL, JmR, JLR float64

	// Local spin-fluctuation exchange, s_i with f_i.
	Je0L, Je0R, Je0m float64

	// Nonlocal spin-fluctuation exchange, s_i with neighboring f_j.
	Je1L, Je1R, Je1m, Je1mL, Je1mR, Je1LR float64

	// Fluctuation-fluctuation exchange.
	JeeL, JeeR, Jeem, JeemL, JeemR, JeeLR float64

	// Biquadratic coupling.
	BqL, BqR, Bqm, BqmL, BqmR, BqLR float64

	// Anisotropy, one coefficient per axis.
	AL, AR, Am vec.Vec3

	// Dzyaloshinskii-Moriya interaction.
	DL, DR, Dm, DmL, DmR, DLR vec.Vec3
}

// DefaultParameters mirrors the conventional starting point: unit spins,
// ferromagnetic leads, an antiferromagnetic right interface, and no
// fluctuation.
func DefaultParameters() Parameters {
	return Parameters{
		KT: 0.25,
		SL: 1, SR: 1, Sm: 1,
		JL: 1, JR: 1,
		JmL: 1, JmR: -1,
	}
}
