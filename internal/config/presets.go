package config

import "sort"

// Presets are ready-made device setups for quick experiments.
var Presets = map[string]*Config{
	// A standard cross-junction: full-window leads around a single
	// molecule column, long enough to equilibrate.
	"junction": {
		Geometry: GeometryConfig{
			Width: 11, Height: 10, Depth: 10,
			MolPosL: 5, MolPosR: 5,
			TopL: 0, BottomL: 9, FrontR: 0, BackR: 9,
		},
		Simulation: SimulationConfig{
			Sweeps: 50_000_000, RecordEvery: 1_000_000,
			Runs: 1, Randomize: true, Model: "continuous",
		},
		OutputDir: "out",
	},
	// A 1D chain of lead sites bridged by a short molecule.
	"nanowire": {
		Geometry: GeometryConfig{
			Width: 50, Height: 1, Depth: 1,
			MolPosL: 24, MolPosR: 26,
			TopL: 0, BottomL: 0, FrontR: 0, BackR: 0,
		},
		Simulation: SimulationConfig{
			Sweeps: 10_000_000, RecordEvery: 200_000,
			Runs: 4, Randomize: true, Model: "continuous",
		},
		OutputDir: "out",
	},
	// Narrowed lead cross-sections so the molecule ring has buffer
	// sites around it.
	"ring_junction": {
		Geometry: GeometryConfig{
			Width: 11, Height: 10, Depth: 10,
			MolPosL: 4, MolPosR: 6,
			TopL: 2, BottomL: 7, FrontR: 3, BackR: 6,
		},
		Simulation: SimulationConfig{
			Sweeps: 50_000_000, RecordEvery: 1_000_000,
			Runs: 1, Randomize: true, Model: "continuous",
		},
		Molecule:  MoleculeConfig{Kind: "ring", Nodes: 6},
		OutputDir: "out",
	},
	// A short Ising-style sanity run.
	"quick": {
		Geometry: GeometryConfig{
			Width: 5, Height: 4, Depth: 4,
			MolPosL: 2, MolPosR: 2,
			TopL: 0, BottomL: 3, FrontR: 0, BackR: 3,
		},
		Simulation: SimulationConfig{
			Sweeps: 100_000, RecordEvery: 10_000,
			Runs: 1, Randomize: true, Model: "up_down",
		},
		OutputDir: "out",
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
