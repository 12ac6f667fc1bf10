// Package config loads and saves simulation configuration: a yaml file
// for geometry and run control, and a plain key=value coupling sheet
// for the Hamiltonian parameters.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spinsim/msd/internal/molecule"
	"github.com/spinsim/msd/internal/msd"
)

const (
	DefaultWidth  = 11
	DefaultHeight = 10
	DefaultDepth  = 10

	DefaultSweeps      = 50_000_000
	DefaultRecordEvery = 1_000_000
	DefaultRuns        = 1
)

type Config struct {
	Geometry   GeometryConfig   `yaml:"geometry"`
	Simulation SimulationConfig `yaml:"simulation"`
	Molecule   MoleculeConfig   `yaml:"molecule"`

	// ParamsFile optionally names a key=value coupling sheet applied on
	// top of the defaults.
	ParamsFile string `yaml:"params_file"`

	OutputDir string `yaml:"output_dir"`
}

type GeometryConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`

	MolPosL int `yaml:"mol_pos_l"`
	MolPosR int `yaml:"mol_pos_r"`
	TopL    int `yaml:"top_l"`
	BottomL int `yaml:"bottom_l"`
	FrontR  int `yaml:"front_r"`
	BackR   int `yaml:"back_r"`
}

type SimulationConfig struct {
	Sweeps      uint64 `yaml:"sweeps"`
	RecordEvery uint64 `yaml:"record_every"`
	Seed        int64  `yaml:"seed"`
	Runs        int    `yaml:"runs"`
	Randomize   bool   `yaml:"randomize"`
	Model       string `yaml:"model"` // continuous | up_down
}

type MoleculeConfig struct {
	Kind  string `yaml:"kind"` // linear | ring | file | "" (uniform)
	Nodes int    `yaml:"nodes"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Geometry: GeometryConfig{
			Width: DefaultWidth, Height: DefaultHeight, Depth: DefaultDepth,
			MolPosL: (DefaultWidth - 1) / 2, MolPosR: DefaultWidth / 2,
			TopL: 0, BottomL: DefaultHeight - 1,
			FrontR: 0, BackR: DefaultDepth - 1,
		},
		Simulation: SimulationConfig{
			Sweeps:      DefaultSweeps,
			RecordEvery: DefaultRecordEvery,
			Runs:        DefaultRuns,
			Randomize:   true,
			Model:       "continuous",
		},
		OutputDir: "out",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (g GeometryConfig) Geometry() msd.Geometry {
	return msd.Geometry{
		Width: g.Width, Height: g.Height, Depth: g.Depth,
		MolPosL: g.MolPosL, MolPosR: g.MolPosR,
		TopL: g.TopL, BottomL: g.BottomL,
		FrontR: g.FrontR, BackR: g.BackR,
	}
}

func (s SimulationConfig) Flip() (msd.FlippingStrategy, error) {
	switch s.Model {
	case "", "continuous":
		return msd.ContinuousSpinModel, nil
	case "up_down":
		return msd.UpDownModel, nil
	}
	return nil, fmt.Errorf("unknown spin model %q", s.Model)
}

// Build constructs the molecule prototype the configuration asks for,
// with every node and edge carrying the uniform molecule couplings
// from p. An empty kind means no explicit molecule: the device falls
// back to its uniform single-row treatment.
func (m MoleculeConfig) Build(p msd.Parameters) (*molecule.Prototype, error) {
	var proto *molecule.Prototype
	var err error
	switch m.Kind {
	case "":
		return nil, nil
	case "linear":
		proto, err = molecule.NewLinear(m.Nodes)
	case "ring":
		proto, err = molecule.NewRing(m.Nodes)
	case "file":
		var data []byte
		data, err = os.ReadFile(m.File)
		if err != nil {
			return nil, err
		}
		proto = new(molecule.Prototype)
		if err := proto.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("molecule file %s: %w", m.File, err)
		}
		return proto, nil
	default:
		return nil, fmt.Errorf("unknown molecule kind %q", m.Kind)
	}
	if err != nil {
		return nil, err
	}
	ApplyUniform(proto, p)
	return proto, nil
}

// MolNodeParams projects the uniform molecule couplings out of p.
func MolNodeParams(p msd.Parameters) molecule.NodeParams {
	return molecule.NodeParams{Sm: p.Sm, Fm: p.Fm, Je0m: p.Je0m, Am: p.Am}
}

// MolEdgeParams projects the uniform molecule edge couplings out of p.
func MolEdgeParams(p msd.Parameters) molecule.EdgeParams {
	return molecule.EdgeParams{Jm: p.Jm, Je1m: p.Je1m, Jeem: p.Jeem, Bqm: p.Bqm, Dm: p.Dm}
}

// ApplyUniform overwrites every node and edge of proto with the
// uniform molecule couplings from p.
func ApplyUniform(proto *molecule.Prototype, p msd.Parameters) {
	node := MolNodeParams(p)
	edge := MolEdgeParams(p)
	for i := 0; i < proto.Nodes(); i++ {
		proto.SetNode(i, node)
	}
	for e := 0; e < proto.Edges(); e++ {
		proto.SetEdge(e, edge)
	}
}
